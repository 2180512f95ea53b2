package repository

import (
	"context"
	"errors"

	"github.com/wanderkit/placesync/internal/location/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByPlaceID(ctx context.Context, db *gorm.DB, placeID string) (*domain.Location, error) {
	var loc domain.Location
	err := db.WithContext(ctx).
		Where("place_id = ?", placeID).
		First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *repo) UpsertByPlaceID(ctx context.Context, db *gorm.DB, loc *domain.Location) error {
	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name",
			"names",
			"address",
			"phone",
			"website",
			"lat",
			"lng",
			"updated_at",
		}),
	}
	return db.WithContext(ctx).Clauses(conflict).Create(loc).Error
}

func (r *repo) UpdateTexts(ctx context.Context, db *gorm.DB, placeID string, names, descriptions datatypes.JSONMap) error {
	return db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("place_id = ?", placeID).
		Updates(map[string]any{
			"names":        names,
			"descriptions": descriptions,
		}).Error
}
