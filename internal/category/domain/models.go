package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category mirrors one provider category code with per-language display
// names.
type Category struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code      string            `gorm:"not null;uniqueIndex:uidx_categories_code" json:"code"`
	Names     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"names"`
	Icon      string            `json:"icon,omitempty"`
	Active    bool              `gorm:"not null;default:true" json:"active"`
	SortOrder int               `gorm:"not null;default:9999" json:"sort_order"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Category, error)
	// InsertIgnore inserts the category unless its code exists. Returns
	// true when a row was actually inserted.
	InsertIgnore(ctx context.Context, db *gorm.DB, category *Category) (bool, error)
}

type Service interface {
	FindByCode(ctx context.Context, code string) (*Category, error)
	// SyncCodes registers every unseen category code with best-effort
	// translated display names. Returns how many categories were created.
	SyncCodes(ctx context.Context, codes []string) (int, error)
}
