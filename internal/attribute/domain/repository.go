package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Exists(ctx context.Context, db *gorm.DB, key string) (bool, error)
	// InsertIgnore inserts the definition unless a row with the same key
	// already exists. Returns true when a row was actually inserted.
	InsertIgnore(ctx context.Context, db *gorm.DB, def *AttributeDefinition) (bool, error)
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*AttributeDefinition, error)
	ListActive(ctx context.Context, db *gorm.DB, categoryID snowflake.ID, tiers []UpdateTier) ([]AttributeDefinition, error)
	InsertLinkIgnore(ctx context.Context, db *gorm.DB, link *AttributeCategory) (bool, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]AttributeDefinition, error)
}
