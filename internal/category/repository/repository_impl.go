package repository

import (
	"context"
	"errors"

	"github.com/wanderkit/placesync/internal/category/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Category, error) {
	var category domain.Category
	err := db.WithContext(ctx).
		Where("code = ?", code).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *repo) InsertIgnore(ctx context.Context, db *gorm.DB, category *domain.Category) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(category)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
