package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// NoLanguage marks values that are not language-specific. Non-multilingual
// attributes and snapshots are stored under this code.
const NoLanguage = "und"

// EntityValue is one stored value for (entity, attribute, language). The
// composite key is unique; exactly one value slot is populated, matching
// the attribute's kind. The slots exist only at the storage boundary;
// everything above it works with TypedValue.
type EntityValue struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	EntityID     snowflake.ID   `gorm:"not null;uniqueIndex:uidx_entity_values_identity" json:"entity_id"`
	AttributeID  snowflake.ID   `gorm:"not null;uniqueIndex:uidx_entity_values_identity" json:"attribute_id"`
	LanguageCode string         `gorm:"not null;uniqueIndex:uidx_entity_values_identity" json:"language_code"`
	ValueText    *string        `gorm:"column:value_text" json:"value_text,omitempty"`
	ValueNumber  *float64       `gorm:"column:value_number" json:"value_number,omitempty"`
	ValueBool    *bool          `gorm:"column:value_bool" json:"value_bool,omitempty"`
	ValueJSON    datatypes.JSON `gorm:"column:value_json" json:"value_json,omitempty"`
	ValueOption  *string        `gorm:"column:value_option" json:"value_option,omitempty"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}
