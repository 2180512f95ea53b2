package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderkit/placesync/internal/config"
	"github.com/wanderkit/placesync/internal/location/domain"
	"github.com/wanderkit/placesync/internal/provider"
	"github.com/wanderkit/placesync/pkg/flatten"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Provider provider.Client
	Config   config.Config
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	provider provider.Client
	cfg      config.Config
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("location.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		provider: p.Provider,
		cfg:      p.Config,
	}
}

var importFields = []string{"name", "formatted_address", "formatted_phone_number", "website", "geometry"}

func (s *Service) FindByPlaceID(ctx context.Context, placeID string) (*domain.Location, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindByPlaceID(ctx, s.db, placeID)
}

func (s *Service) Import(ctx context.Context, placeID string, preferredName string) (*domain.Location, error) {
	base, err := s.provider.Details(ctx, placeID, s.cfg.BaselineLanguage, importFields)
	if err != nil {
		return nil, err
	}

	names := datatypes.JSONMap{}
	for _, lang := range s.cfg.Languages {
		record := base
		if lang != s.cfg.BaselineLanguage {
			record, err = s.provider.Details(ctx, placeID, lang, []string{"name"})
			if err != nil {
				s.log.Warn("localized name fetch failed",
					zap.String("place_id", placeID),
					zap.String("language", lang),
					zap.Error(err),
				)
				continue
			}
		}
		if name, ok := record["name"].(string); ok && name != "" {
			names[lang] = name
		}
	}

	displayName := strings.TrimSpace(preferredName)
	if displayName == "" {
		if name, ok := names[s.cfg.BaselineLanguage].(string); ok {
			displayName = name
		}
	}

	now := time.Now().UTC()
	loc := &domain.Location{
		ID:           s.genID.Generate(),
		PlaceID:      placeID,
		DisplayName:  displayName,
		Names:        names,
		Descriptions: datatypes.JSONMap{},
		Address:      stringField(base, "formatted_address"),
		Phone:        stringField(base, "formatted_phone_number"),
		Website:      stringField(base, "website"),
		Lat:          floatField(base, "geometry.location.lat"),
		Lng:          floatField(base, "geometry.location.lng"),
		SyncEnabled:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.UpsertByPlaceID(ctx, s.db, loc); err != nil {
		return nil, err
	}
	return s.repo.FindByPlaceID(ctx, s.db, placeID)
}

var backfillFields = []string{"name", "editorial_summary"}

func (s *Service) BackfillTexts(ctx context.Context, placeID string, force bool) (domain.BackfillReport, error) {
	report := domain.BackfillReport{}

	loc, err := s.FindByPlaceID(ctx, placeID)
	if err != nil {
		return report, err
	}
	if loc == nil {
		return report, domain.ErrNotFound
	}

	baseRecord, err := s.provider.Details(ctx, placeID, s.cfg.BaselineLanguage, backfillFields)
	if err != nil {
		return report, err
	}
	baseDesc := stringField(baseRecord, "editorial_summary.overview")

	names := cloneMap(loc.Names)
	descriptions := cloneMap(loc.Descriptions)

	for _, lang := range s.cfg.Languages {
		record := baseRecord
		if lang != s.cfg.BaselineLanguage {
			record, err = s.provider.Details(ctx, placeID, lang, backfillFields)
			if err != nil {
				s.log.Warn("backfill fetch failed",
					zap.String("place_id", placeID),
					zap.String("language", lang),
					zap.Error(err),
				)
				continue
			}
		}

		if name := stringField(record, "name"); name != "" {
			if force || emptyEntry(names, lang) {
				names[lang] = name
				report.NamesWritten++
			}
		}

		desc := stringField(record, "editorial_summary.overview")
		if desc == "" {
			continue
		}
		// The provider frequently serves the baseline text for languages it
		// has no localized summary for; storing it would fake a translation.
		if lang != s.cfg.BaselineLanguage && baseDesc != "" && normalizeText(desc) == normalizeText(baseDesc) {
			report.SkippedSameAsBase++
			continue
		}
		if force || emptyEntry(descriptions, lang) {
			descriptions[lang] = desc
			report.DescriptionsWritten++
		}
	}

	if report.NamesWritten == 0 && report.DescriptionsWritten == 0 {
		return report, nil
	}
	if err := s.repo.UpdateTexts(ctx, s.db, placeID, names, descriptions); err != nil {
		return report, err
	}
	return report, nil
}

func stringField(record provider.Record, keyPath string) string {
	if s, ok := flatten.Resolve(record, keyPath).(string); ok {
		return s
	}
	return ""
}

func floatField(record provider.Record, keyPath string) float64 {
	if f, ok := flatten.Resolve(record, keyPath).(float64); ok {
		return f
	}
	return 0
}

func emptyEntry(entries datatypes.JSONMap, lang string) bool {
	existing, ok := entries[lang].(string)
	return !ok || strings.TrimSpace(existing) == ""
}

func cloneMap(src datatypes.JSONMap) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range src {
		out[k] = v
	}
	return out
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
