package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderkit/placesync/internal/value/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, row *domain.EntityValue) error {
	// All value slots are listed in DoUpdates so a conflicting row has its
	// stale slots nulled before the fresh one lands.
	conflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "entity_id"},
			{Name: "attribute_id"},
			{Name: "language_code"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"value_text",
			"value_number",
			"value_bool",
			"value_json",
			"value_option",
			"updated_at",
		}),
	}
	return db.WithContext(ctx).Clauses(conflict).Create(row).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, entityID, attributeID snowflake.ID, languageCode string) (*domain.EntityValue, error) {
	var row domain.EntityValue
	err := db.WithContext(ctx).
		Where("entity_id = ? AND attribute_id = ? AND language_code = ?", entityID, attributeID, languageCode).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
