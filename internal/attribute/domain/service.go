package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// DiscoveryReport counts the outcome of one record scan.
type DiscoveryReport struct {
	KeysSeen   int
	Registered int
	Failed     int
}

type Service interface {
	Exists(ctx context.Context, key string) (bool, error)
	// RegisterIfAbsent creates an inactive definition for key unless one
	// exists. Safe under concurrent invocation for the same key: the
	// uniqueness constraint on key is the correctness backstop, not a
	// check-then-insert.
	RegisterIfAbsent(ctx context.Context, key string, kind Kind) (*AttributeDefinition, bool, error)
	// Discover flattens a provider record and registers every previously
	// unseen key. A failure on one key is logged and does not abort the
	// remaining keys.
	Discover(ctx context.Context, record map[string]any) DiscoveryReport
	ActiveDefinitionsFor(ctx context.Context, categoryID snowflake.ID, tiers []UpdateTier) ([]AttributeDefinition, error)
	// LinkAllToCategory attaches every known definition to the category,
	// skipping links that already exist.
	LinkAllToCategory(ctx context.Context, categoryID snowflake.ID) (int, error)
}
