package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Write materializes one typed value under (entity, attribute,
	// language). Repeated writes with the same key replace the prior
	// value in place.
	Write(ctx context.Context, entityID, attributeID snowflake.ID, languageCode string, value TypedValue) error
	// WriteSnapshot replaces the stored repeating-collection snapshot
	// wholesale. An empty entry list is a no-op unless clear-on-empty is
	// configured, in which case the stored list becomes empty.
	WriteSnapshot(ctx context.Context, entityID, attributeID snowflake.ID, entries []SnapshotEntry) error
	Get(ctx context.Context, entityID, attributeID snowflake.ID, languageCode string) (*EntityValue, error)
}
