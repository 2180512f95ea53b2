package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	attributedomain "github.com/wanderkit/placesync/internal/attribute/domain"
	categorydomain "github.com/wanderkit/placesync/internal/category/domain"
	"github.com/wanderkit/placesync/internal/clock"
	"github.com/wanderkit/placesync/internal/config"
	locationdomain "github.com/wanderkit/placesync/internal/location/domain"
	"github.com/wanderkit/placesync/internal/provider"
	"github.com/wanderkit/placesync/internal/translate"
	valuedomain "github.com/wanderkit/placesync/internal/value/domain"
	"github.com/wanderkit/placesync/internal/worklist"
	"github.com/wanderkit/placesync/pkg/flatten"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const snapshotKey = "photos"

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	Provider     provider.Client
	Orchestrator *translate.Orchestrator
	AttributeSvc attributedomain.Service
	ValueSvc     valuedomain.Service
	LocationSvc  locationdomain.Service
	CategorySvc  categorydomain.Service
	Config       config.Config
}

// Service runs the enrichment phases over a worklist. Entities are
// independent; enrichment processes them with bounded parallelism and no
// error class aborts the remaining work.
type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	provider provider.Client
	orch     *translate.Orchestrator
	attrSvc  attributedomain.Service
	valueSvc valuedomain.Service
	locSvc   locationdomain.Service
	catSvc   categorydomain.Service
	cfg      config.Config
}

func New(p Params) *Service {
	return &Service{
		log:      p.Log.Named("pipeline.service"),
		clock:    p.Clock,
		provider: p.Provider,
		orch:     p.Orchestrator,
		attrSvc:  p.AttributeSvc,
		valueSvc: p.ValueSvc,
		locSvc:   p.LocationSvc,
		catSvc:   p.CategorySvc,
		cfg:      p.Config,
	}
}

// Import upserts the location row for every worklist entry, fetching the
// place core fields in each configured language.
func (s *Service) Import(ctx context.Context, entries []worklist.Entry) {
	var imported int
	for _, entry := range entries {
		loc, err := s.locSvc.Import(ctx, entry.PlaceID, entry.PreferredName)
		if err != nil {
			s.log.Warn("location import failed",
				zap.String("place_id", entry.PlaceID),
				zap.Error(err),
			)
			continue
		}
		imported++
		s.log.Debug("location imported",
			zap.String("place_id", entry.PlaceID),
			zap.Int64("location_id", loc.ID.Int64()),
		)
	}
	s.log.Info("import finished", zap.Int("imported", imported), zap.Int("entries", len(entries)))
}

// Discover scans every worklist entry's full provider record and registers
// unseen keys as inactive attribute definitions.
func (s *Service) Discover(ctx context.Context, entries []worklist.Entry) attributedomain.DiscoveryReport {
	total := attributedomain.DiscoveryReport{}
	for _, entry := range entries {
		record, err := s.provider.Details(ctx, entry.PlaceID, s.cfg.BaselineLanguage, nil)
		if err != nil {
			s.log.Warn("discovery fetch failed",
				zap.String("place_id", entry.PlaceID),
				zap.Error(err),
			)
			continue
		}
		report := s.attrSvc.Discover(ctx, record)
		total.KeysSeen += report.KeysSeen
		total.Registered += report.Registered
		total.Failed += report.Failed
	}
	s.log.Info("discovery finished",
		zap.Int("keys_seen", total.KeysSeen),
		zap.Int("registered", total.Registered),
		zap.Int("failed", total.Failed),
	)
	return total
}

// SyncCategories registers unseen category codes from the worklist and
// attaches known attributes to each entry's category.
func (s *Service) SyncCategories(ctx context.Context, entries []worklist.Entry) error {
	var codes []string
	for _, entry := range entries {
		codes = append(codes, entry.Types...)
	}
	created, err := s.catSvc.SyncCodes(ctx, codes)
	if err != nil {
		return err
	}
	s.log.Info("category sync finished", zap.Int("created", created))

	for _, entry := range entries {
		loc, err := s.locSvc.FindByPlaceID(ctx, entry.PlaceID)
		if err != nil || loc == nil || loc.CategoryID == 0 {
			continue
		}
		linked, err := s.attrSvc.LinkAllToCategory(ctx, loc.CategoryID)
		if err != nil {
			s.log.Warn("attribute link fill failed",
				zap.String("place_id", entry.PlaceID),
				zap.Error(err),
			)
			continue
		}
		if linked > 0 {
			s.log.Info("attribute links filled",
				zap.String("place_id", entry.PlaceID),
				zap.Int("linked", linked),
			)
		}
	}
	return nil
}

// Enrich materializes typed, per-language values for every worklist entry.
func (s *Service) Enrich(ctx context.Context, entries []worklist.Entry) *Report {
	report := &Report{}
	tiers := attributedomain.TiersFor(s.clock.Now())

	sem := make(chan struct{}, s.maxConcurrency())
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(entry worklist.Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			s.enrichEntity(ctx, entry, tiers, report)
		}(entry)
	}
	wg.Wait()

	s.log.Info("enrichment finished",
		zap.Int64("processed", report.Processed),
		zap.Int64("succeeded", report.Succeeded),
		zap.Int64("skipped", report.Skipped),
		zap.Int64("failed", report.Failed),
		zap.Int64("values_written", report.ValuesWritten),
		zap.Int64("values_skipped", report.ValuesSkipped),
		zap.Int64("values_failed", report.ValuesFailed),
		zap.Int64("snapshots_written", report.SnapshotsWritten),
	)
	return report
}

func (s *Service) enrichEntity(ctx context.Context, entry worklist.Entry, tiers []attributedomain.UpdateTier, report *Report) {
	report.incProcessed()
	log := s.log.With(zap.String("place_id", entry.PlaceID))

	loc, err := s.locSvc.FindByPlaceID(ctx, entry.PlaceID)
	if err != nil {
		log.Error("location lookup failed", zap.Error(err))
		report.incFailed()
		return
	}
	if loc == nil {
		log.Warn("no location for place id, skipping")
		report.incSkipped()
		return
	}

	defs, err := s.attrSvc.ActiveDefinitionsFor(ctx, loc.CategoryID, tiers)
	if err != nil {
		log.Error("active definitions lookup failed", zap.Error(err))
		report.incFailed()
		return
	}
	defs = s.filterDefinitions(defs)
	if len(defs) == 0 {
		report.incSkipped()
		return
	}

	record, err := s.provider.Details(ctx, entry.PlaceID, s.cfg.BaselineLanguage, fieldsFor(defs))
	if err != nil {
		// Includes non-OK provider statuses: no data this run.
		log.Warn("provider fetch failed", zap.Error(err))
		report.incFailed()
		return
	}

	for _, def := range defs {
		if def.Key == snapshotKey && def.Kind == attributedomain.KindJSON {
			s.materializeSnapshot(ctx, loc, def, record, report, log)
			continue
		}
		s.materializeAttribute(ctx, loc, def, record, report, log)
	}
	report.incSucceeded()
}

func (s *Service) materializeSnapshot(
	ctx context.Context,
	loc *locationdomain.Location,
	def attributedomain.AttributeDefinition,
	record provider.Record,
	report *Report,
	log *zap.Logger,
) {
	raw, _ := record[snapshotKey].([]any)
	entries := valuedomain.BuildSnapshot(raw, s.cfg.SnapshotMaxEntries)

	if err := s.valueSvc.WriteSnapshot(ctx, loc.ID, def.ID, entries); err != nil {
		log.Error("snapshot write failed",
			zap.String("key", def.Key),
			zap.Error(err),
		)
		report.incValuesFailed()
		return
	}
	if len(entries) > 0 {
		report.incSnapshotsWritten()
		log.Debug("snapshot replaced",
			zap.String("key", def.Key),
			zap.Int("entries", len(entries)),
		)
	}
}

func (s *Service) materializeAttribute(
	ctx context.Context,
	loc *locationdomain.Location,
	def attributedomain.AttributeDefinition,
	record provider.Record,
	report *Report,
	log *zap.Logger,
) {
	raw := flatten.Resolve(record, def.Key)
	if raw == nil || raw == "" {
		return
	}

	languages := []string{valuedomain.NoLanguage}
	if def.Multilingual {
		languages = s.cfg.Languages
	}

	for _, lang := range languages {
		resolved, langCode := s.orch.Resolve(ctx, def.Multilingual, raw, lang)

		typed, fellBack, err := valuedomain.Coerce(def.Kind, resolved)
		if err != nil {
			if errors.Is(err, valuedomain.ErrNotANumber) || errors.Is(err, valuedomain.ErrUnknownKind) {
				log.Warn("value skipped",
					zap.String("key", def.Key),
					zap.String("language", langCode),
					zap.Error(err),
				)
				report.incValuesSkipped()
				continue
			}
			report.incValuesFailed()
			continue
		}
		if fellBack {
			log.Warn("json value stored as text",
				zap.String("key", def.Key),
				zap.String("language", langCode),
			)
		}

		if err := s.valueSvc.Write(ctx, loc.ID, def.ID, langCode, typed); err != nil {
			log.Error("value write failed",
				zap.String("key", def.Key),
				zap.String("language", langCode),
				zap.Error(err),
			)
			report.incValuesFailed()
			continue
		}
		report.incValuesWritten()
	}
}

// Backfill fills per-language location names and descriptions.
func (s *Service) Backfill(ctx context.Context, entries []worklist.Entry, force bool) {
	for _, entry := range entries {
		report, err := s.locSvc.BackfillTexts(ctx, entry.PlaceID, force)
		if err != nil {
			s.log.Warn("backfill failed",
				zap.String("place_id", entry.PlaceID),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("backfill done",
			zap.String("place_id", entry.PlaceID),
			zap.Int("names_written", report.NamesWritten),
			zap.Int("descriptions_written", report.DescriptionsWritten),
			zap.Int("skipped_same_as_base", report.SkippedSameAsBase),
		)
	}
}

func (s *Service) filterDefinitions(defs []attributedomain.AttributeDefinition) []attributedomain.AttributeDefinition {
	if s.cfg.IncludeReviews {
		return defs
	}
	out := defs[:0]
	for _, def := range defs {
		if def.Key == "reviews" || strings.HasPrefix(def.Key, "reviews.") {
			continue
		}
		out = append(out, def)
	}
	return out
}

func (s *Service) maxConcurrency() int {
	if s.cfg.MaxConcurrentEntities > 0 {
		return s.cfg.MaxConcurrentEntities
	}
	return 1
}

// fieldsFor narrows the provider fetch to the top-level fields the active
// definitions actually need.
func fieldsFor(defs []attributedomain.AttributeDefinition) []string {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		root := def.Key
		if idx := strings.IndexByte(root, '.'); idx > 0 {
			root = root[:idx]
		}
		seen[root] = struct{}{}
	}
	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
