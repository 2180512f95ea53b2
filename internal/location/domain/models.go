package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("location not found")

// Location is one enrichable place. Names and Descriptions hold one entry
// per language code.
type Location struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	PlaceID      string            `gorm:"not null;uniqueIndex:uidx_locations_place_id" json:"place_id"`
	CategoryID   snowflake.ID      `json:"category_id"`
	DisplayName  string            `json:"display_name"`
	Names        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"names"`
	Descriptions datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"descriptions"`
	Address      string            `json:"address,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Website      string            `json:"website,omitempty"`
	Lat          float64           `json:"lat,omitempty"`
	Lng          float64           `json:"lng,omitempty"`
	SyncEnabled  bool              `gorm:"not null;default:true" json:"sync_enabled"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
