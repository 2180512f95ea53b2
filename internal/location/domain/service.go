package domain

import "context"

// BackfillReport counts one backfill pass over a location.
type BackfillReport struct {
	NamesWritten        int
	DescriptionsWritten int
	SkippedSameAsBase   int
}

type Service interface {
	FindByPlaceID(ctx context.Context, placeID string) (*Location, error)
	// Import fetches the place core record in every configured language
	// and upserts the location row.
	Import(ctx context.Context, placeID string, preferredName string) (*Location, error)
	// BackfillTexts fills per-language names and descriptions
	// write-if-empty; force overwrites existing values. Descriptions that
	// merely repeat the baseline text are skipped for other languages.
	BackfillTexts(ctx context.Context, placeID string, force bool) (BackfillReport, error)
}
