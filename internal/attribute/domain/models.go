package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderkit/placesync/pkg/flatten"
)

// Kind is the closed set of storage types a discovered attribute can take.
type Kind string

const (
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindJSON    Kind = "json"
	KindOption  Kind = "option"
)

// UpdateTier governs how often an attribute is refreshed.
type UpdateTier string

const (
	TierEveryRun UpdateTier = "every_run"
	TierWeekly   UpdateTier = "weekly"
	TierMonthly  UpdateTier = "monthly"
)

// TiersFor computes the tier set active for a run starting at the given
// instant. Weekly attributes refresh on Mondays, monthly ones on the first
// of the month. Computed once per run and threaded through materialization.
func TiersFor(now time.Time) []UpdateTier {
	tiers := []UpdateTier{TierEveryRun}
	if now.Weekday() == time.Monday {
		tiers = append(tiers, TierWeekly)
	}
	if now.Day() == 1 {
		tiers = append(tiers, TierMonthly)
	}
	return tiers
}

// AttributeDefinition describes one discoverable field of a provider record.
// Key is immutable once created; Active and category links are curated
// out-of-band and never written by the pipeline.
type AttributeDefinition struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Key          string       `gorm:"not null;uniqueIndex:uidx_attribute_definitions_key" json:"key"`
	Kind         Kind         `gorm:"column:kind;not null" json:"kind"`
	Multilingual bool         `gorm:"not null;default:false" json:"multilingual"`
	Active       bool         `gorm:"not null;default:false" json:"active"`
	UpdateTier   UpdateTier   `gorm:"not null;default:'every_run'" json:"update_tier"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AttributeCategory links an attribute definition to a category it applies
// to. A definition with no links applies to every category.
type AttributeCategory struct {
	AttributeID snowflake.ID `gorm:"not null;uniqueIndex:uidx_attribute_categories" json:"attribute_id"`
	CategoryID  snowflake.ID `gorm:"not null;uniqueIndex:uidx_attribute_categories" json:"category_id"`
}

// InferKind classifies the leaf at keyPath. Missing paths, strings and
// anything unrecognized classify as text so that discovery never fails on
// an odd value.
func InferKind(record map[string]any, keyPath string) Kind {
	switch flatten.Resolve(record, keyPath).(type) {
	case nil:
		return KindText
	case bool:
		return KindBoolean
	case float64, float32, int, int32, int64:
		return KindNumber
	case map[string]any, []any:
		return KindJSON
	default:
		return KindText
	}
}
