package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderkit/placesync/internal/attribute/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, key string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.AttributeDefinition{}).
		Where("key = ?", key).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) InsertIgnore(ctx context.Context, db *gorm.DB, def *domain.AttributeDefinition) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(def)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.AttributeDefinition, error) {
	var def domain.AttributeDefinition
	err := db.WithContext(ctx).
		Where("key = ?", key).
		First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, categoryID snowflake.ID, tiers []domain.UpdateTier) ([]domain.AttributeDefinition, error) {
	var defs []domain.AttributeDefinition
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM attribute_definitions ad
		 WHERE ad.active = ?
		   AND ad.update_tier IN ?
		   AND (
		     NOT EXISTS (SELECT 1 FROM attribute_categories ac WHERE ac.attribute_id = ad.id)
		     OR EXISTS (SELECT 1 FROM attribute_categories ac WHERE ac.attribute_id = ad.id AND ac.category_id = ?)
		   )
		 ORDER BY ad.key`,
		true,
		tiers,
		categoryID,
	).Scan(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *repo) InsertLinkIgnore(ctx context.Context, db *gorm.DB, link *domain.AttributeCategory) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attribute_id"}, {Name: "category_id"}},
			DoNothing: true,
		}).
		Create(link)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.AttributeDefinition, error) {
	var defs []domain.AttributeDefinition
	err := db.WithContext(ctx).
		Order("key").
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}
