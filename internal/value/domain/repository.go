package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert writes the row, overwriting all value slots when the
	// (entity_id, attribute_id, language_code) key already exists.
	Upsert(ctx context.Context, db *gorm.DB, row *EntityValue) error
	Find(ctx context.Context, db *gorm.DB, entityID, attributeID snowflake.ID, languageCode string) (*EntityValue, error)
}
