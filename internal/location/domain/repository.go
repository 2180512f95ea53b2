package domain

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	FindByPlaceID(ctx context.Context, db *gorm.DB, placeID string) (*Location, error)
	// UpsertByPlaceID inserts the location or refreshes its provider-owned
	// fields when a row with the same place id exists.
	UpsertByPlaceID(ctx context.Context, db *gorm.DB, loc *Location) error
	UpdateTexts(ctx context.Context, db *gorm.DB, placeID string, names, descriptions datatypes.JSONMap) error
}
