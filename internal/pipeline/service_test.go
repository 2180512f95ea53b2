package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/wanderkit/placesync/internal/attribute/domain"
	attributerepo "github.com/wanderkit/placesync/internal/attribute/repository"
	attributeservice "github.com/wanderkit/placesync/internal/attribute/service"
	categorydomain "github.com/wanderkit/placesync/internal/category/domain"
	"github.com/wanderkit/placesync/internal/clock"
	"github.com/wanderkit/placesync/internal/config"
	locationdomain "github.com/wanderkit/placesync/internal/location/domain"
	"github.com/wanderkit/placesync/internal/provider"
	"github.com/wanderkit/placesync/internal/translate"
	valuedomain "github.com/wanderkit/placesync/internal/value/domain"
	valuerepo "github.com/wanderkit/placesync/internal/value/repository"
	valueservice "github.com/wanderkit/placesync/internal/value/service"
	"github.com/wanderkit/placesync/internal/worklist"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type providerStub struct {
	records map[string]provider.Record
	errs    map[string]error
}

func (p *providerStub) Details(ctx context.Context, placeID, language string, fields []string) (provider.Record, error) {
	if err, ok := p.errs[placeID]; ok {
		return nil, err
	}
	record, ok := p.records[placeID]
	if !ok {
		return nil, &provider.StatusError{Status: "NOT_FOUND"}
	}
	return record, nil
}

type translatorStub struct{}

func (translatorStub) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return "[" + targetLang + "] " + text, nil
}

type locationStub struct {
	locations map[string]*locationdomain.Location
}

func (s *locationStub) FindByPlaceID(ctx context.Context, placeID string) (*locationdomain.Location, error) {
	return s.locations[placeID], nil
}

func (s *locationStub) Import(ctx context.Context, placeID, preferredName string) (*locationdomain.Location, error) {
	return s.locations[placeID], nil
}

func (s *locationStub) BackfillTexts(ctx context.Context, placeID string, force bool) (locationdomain.BackfillReport, error) {
	return locationdomain.BackfillReport{}, nil
}

type categoryStub struct {
	synced []string
}

func (s *categoryStub) FindByCode(ctx context.Context, code string) (*categorydomain.Category, error) {
	return nil, nil
}

func (s *categoryStub) SyncCodes(ctx context.Context, codes []string) (int, error) {
	s.synced = append(s.synced, codes...)
	return len(codes), nil
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	clock    *clock.FakeClock
	valueSvc valuedomain.Service
	defs     map[string]snowflake.ID
	entity   snowflake.ID
	node     *snowflake.Node
}

func TestEnrichMaterializesTypedValues(t *testing.T) {
	record := provider.Record{
		"name":   "Cafe X",
		"rating": 4.5,
		"opening_hours": map[string]any{
			"open_now": true,
		},
		"photos": []any{
			map[string]any{"photo_reference": "p1", "width": float64(400), "height": float64(300)},
			map[string]any{"photo_reference": "p1", "width": float64(999), "height": float64(999)},
			map[string]any{"photo_reference": "p2", "width": float64(500), "height": float64(400)},
		},
	}
	fx := setupPipeline(t, record, 1)
	ctx := context.Background()

	report := fx.svc.Enrich(ctx, []worklist.Entry{{PlaceID: "ChIJcafe"}})

	if report.Processed != 1 || report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	// name in en+de, rating and open_now once each.
	if report.ValuesWritten != 4 {
		t.Fatalf("expected 4 values written, got %+v", report)
	}
	if report.SnapshotsWritten != 1 {
		t.Fatalf("expected 1 snapshot written, got %+v", report)
	}

	// Multilingual text lands per language; the non-baseline one is
	// translated.
	row := fxGet(t, fx, "name", "en")
	if row.ValueText == nil || *row.ValueText != "Cafe X" {
		t.Fatalf("unexpected en name: %+v", row)
	}
	row = fxGet(t, fx, "name", "de")
	if row.ValueText == nil || *row.ValueText != "[de] Cafe X" {
		t.Fatalf("unexpected de name: %+v", row)
	}

	// Non-multilingual values live under the no-language marker.
	row = fxGet(t, fx, "rating", valuedomain.NoLanguage)
	if row.ValueNumber == nil || *row.ValueNumber != 4.5 {
		t.Fatalf("unexpected rating: %+v", row)
	}
	row = fxGet(t, fx, "opening_hours.open_now", valuedomain.NoLanguage)
	if row.ValueBool == nil || !*row.ValueBool {
		t.Fatalf("unexpected open_now: %+v", row)
	}

	// Snapshot cap 1: duplicates collapse first, then the cap applies.
	row = fxGet(t, fx, "photos", valuedomain.NoLanguage)
	var entries []valuedomain.SnapshotEntry
	if err := json.Unmarshal(row.ValueJSON, &entries); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(entries) != 1 || entries[0].Reference != "p1" || entries[0].Width != 400 {
		t.Fatalf("unexpected snapshot: %+v", entries)
	}
}

func TestEnrichIsRerunnable(t *testing.T) {
	record := provider.Record{
		"name":   "Cafe X",
		"rating": 4.5,
	}
	fx := setupPipeline(t, record, 10)
	ctx := context.Background()
	entries := []worklist.Entry{{PlaceID: "ChIJcafe"}}

	first := fx.svc.Enrich(ctx, entries)
	second := fx.svc.Enrich(ctx, entries)

	if first.ValuesWritten != second.ValuesWritten {
		t.Fatalf("rerun should write the same values: %+v vs %+v", first, second)
	}
	row := fxGet(t, fx, "rating", valuedomain.NoLanguage)
	if row.ValueNumber == nil || *row.ValueNumber != 4.5 {
		t.Fatalf("unexpected rating after rerun: %+v", row)
	}
}

func TestEnrichSkipsMissingValuesKeepsPrior(t *testing.T) {
	fx := setupPipeline(t, provider.Record{"rating": 4.5}, 10)
	ctx := context.Background()
	entries := []worklist.Entry{{PlaceID: "ChIJcafe"}}

	fx.svc.Enrich(ctx, entries)

	// The next fetch is missing the rating; the stored value survives.
	fx.svc.provider.(*providerStub).records["ChIJcafe"] = provider.Record{"name": "Cafe X"}
	fx.svc.Enrich(ctx, entries)

	row := fxGet(t, fx, "rating", valuedomain.NoLanguage)
	if row.ValueNumber == nil || *row.ValueNumber != 4.5 {
		t.Fatalf("missing source value must not erase prior value: %+v", row)
	}
}

func TestEnrichCountsFailuresAndSkips(t *testing.T) {
	fx := setupPipeline(t, provider.Record{"name": "Cafe X"}, 10)
	fx.svc.provider.(*providerStub).errs["ChIJbroken"] = errors.New("connection reset")
	fx.svc.locSvc.(*locationStub).locations["ChIJbroken"] = &locationdomain.Location{
		ID:      snowflake.ID(99),
		PlaceID: "ChIJbroken",
	}

	report := fx.svc.Enrich(context.Background(), []worklist.Entry{
		{PlaceID: "ChIJcafe"},
		{PlaceID: "ChIJbroken"},
		{PlaceID: "ChIJunknown"},
	})

	if report.Processed != 3 {
		t.Fatalf("expected 3 processed, got %+v", report)
	}
	if report.Succeeded != 1 || report.Failed != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected outcome split: %+v", report)
	}
}

func TestEnrichExcludesReviewsByDefault(t *testing.T) {
	record := provider.Record{
		"name":    "Cafe X",
		"reviews": []any{map[string]any{"text": "great"}},
	}
	fx := setupPipeline(t, record, 10)

	fx.svc.Enrich(context.Background(), []worklist.Entry{{PlaceID: "ChIJcafe"}})

	row, err := fx.valueSvc.Get(context.Background(), fx.entity, fx.defs["reviews"], valuedomain.NoLanguage)
	if err != nil {
		t.Fatalf("get reviews: %v", err)
	}
	if row != nil {
		t.Fatalf("reviews must not be materialized by default: %+v", row)
	}
}

func TestDiscoverThenEnrichNewAttributeStaysInactive(t *testing.T) {
	record := provider.Record{
		"name":     "Cafe X",
		"takeout":  true,
		"vicinity": "Main Square",
	}
	fx := setupPipeline(t, record, 10)
	ctx := context.Background()
	entries := []worklist.Entry{{PlaceID: "ChIJcafe"}}

	discovered := fx.svc.Discover(ctx, entries)
	if discovered.Registered != 2 {
		t.Fatalf("expected takeout and vicinity registered, got %+v", discovered)
	}

	fx.svc.Enrich(ctx, entries)

	row, err := fx.valueSvc.Get(ctx, fx.entity, fx.defs["name"], "en")
	if err != nil || row == nil {
		t.Fatalf("active attribute should be materialized: %v", err)
	}

	// Freshly discovered attributes are inactive and must not produce
	// values until curated.
	var takeout attributedomain.AttributeDefinition
	if err := fx.db.Where("key = ?", "takeout").First(&takeout).Error; err != nil {
		t.Fatalf("lookup takeout definition: %v", err)
	}
	if takeout.Active {
		t.Fatalf("discovered definition must start inactive: %+v", takeout)
	}
	row, err = fx.valueSvc.Get(ctx, fx.entity, takeout.ID, valuedomain.NoLanguage)
	if err != nil {
		t.Fatalf("get takeout value: %v", err)
	}
	if row != nil {
		t.Fatalf("inactive attribute must not be materialized: %+v", row)
	}
}

func TestEnrichGatesWeeklyTierByRunDay(t *testing.T) {
	record := provider.Record{
		"name":    "Cafe X",
		"website": "https://cafe.example",
	}
	fx := setupPipeline(t, record, 10)
	ctx := context.Background()
	entries := []worklist.Entry{{PlaceID: "ChIJcafe"}}

	weekly := attributedomain.AttributeDefinition{
		ID:         fx.node.Generate(),
		Key:        "website",
		Kind:       attributedomain.KindText,
		Active:     true,
		UpdateTier: attributedomain.TierWeekly,
	}
	if err := fx.db.Create(&weekly).Error; err != nil {
		t.Fatalf("seed weekly definition: %v", err)
	}

	// Fixture clock starts on a Tuesday: the weekly attribute sits out.
	fx.svc.Enrich(ctx, entries)
	row, err := fx.valueSvc.Get(ctx, fx.entity, weekly.ID, valuedomain.NoLanguage)
	if err != nil {
		t.Fatalf("get website: %v", err)
	}
	if row != nil {
		t.Fatalf("weekly attribute must not refresh midweek: %+v", row)
	}

	fx.clock.SetNow(time.Date(2024, 6, 17, 3, 0, 0, 0, time.UTC)) // Monday
	fx.svc.Enrich(ctx, entries)
	row, err = fx.valueSvc.Get(ctx, fx.entity, weekly.ID, valuedomain.NoLanguage)
	if err != nil || row == nil {
		t.Fatalf("weekly attribute should refresh on Monday: %v %+v", err, row)
	}
	if row.ValueText == nil || *row.ValueText != "https://cafe.example" {
		t.Fatalf("unexpected website value: %+v", row)
	}
}

func TestSyncCategoriesCollectsWorklistTypes(t *testing.T) {
	fx := setupPipeline(t, provider.Record{"name": "Cafe X"}, 10)
	cat := fx.svc.catSvc.(*categoryStub)

	err := fx.svc.SyncCategories(context.Background(), []worklist.Entry{
		{PlaceID: "ChIJcafe", Types: []string{"cafe", "restaurant"}},
		{PlaceID: "ChIJother", Types: []string{"bar"}},
	})
	if err != nil {
		t.Fatalf("sync categories: %v", err)
	}

	if len(cat.synced) != 3 {
		t.Fatalf("expected all worklist types forwarded, got %v", cat.synced)
	}
}

func setupPipeline(t *testing.T, record provider.Record, snapshotMax int) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	preparePipelineSchema(t, db)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	// A Tuesday: only the every-run tier is active.
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 11, 3, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	attrSvc := attributeservice.New(attributeservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  attributerepo.Provide(),
	})
	valueSvc := valueservice.New(valueservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  valuerepo.Provide(),
	})

	defs := map[string]snowflake.ID{
		"name":                   seedDefinition(t, db, node, "name", attributedomain.KindText, true),
		"rating":                 seedDefinition(t, db, node, "rating", attributedomain.KindNumber, false),
		"opening_hours.open_now": seedDefinition(t, db, node, "opening_hours.open_now", attributedomain.KindBoolean, false),
		"photos":                 seedDefinition(t, db, node, "photos", attributedomain.KindJSON, false),
		"reviews":                seedDefinition(t, db, node, "reviews", attributedomain.KindJSON, false),
	}

	entityID := node.Generate()
	locations := map[string]*locationdomain.Location{
		"ChIJcafe": {ID: entityID, PlaceID: "ChIJcafe"},
	}

	cfg := config.Config{
		Languages:             []string{"en", "de"},
		BaselineLanguage:      "en",
		SnapshotMaxEntries:    snapshotMax,
		MaxConcurrentEntities: 2,
	}

	svc := New(Params{
		Log:          log,
		Clock:        fakeClock,
		Provider:     &providerStub{records: map[string]provider.Record{"ChIJcafe": record}, errs: map[string]error{}},
		Orchestrator: translate.NewOrchestrator(translatorStub{}, cfg.BaselineLanguage, log),
		AttributeSvc: attrSvc,
		ValueSvc:     valueSvc,
		LocationSvc:  &locationStub{locations: locations},
		CategorySvc:  &categoryStub{},
		Config:       cfg,
	})

	return &fixture{svc: svc, db: db, clock: fakeClock, valueSvc: valueSvc, defs: defs, entity: entityID, node: node}
}

func preparePipelineSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attribute_definitions (
			id INTEGER PRIMARY KEY,
			key TEXT NOT NULL,
			kind TEXT NOT NULL,
			multilingual BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			update_tier TEXT NOT NULL DEFAULT 'every_run',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uidx_attribute_definitions_key ON attribute_definitions (key)`,
		`CREATE TABLE IF NOT EXISTS attribute_categories (
			attribute_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uidx_attribute_categories ON attribute_categories (attribute_id, category_id)`,
		`CREATE TABLE IF NOT EXISTS entity_values (
			id INTEGER PRIMARY KEY,
			entity_id INTEGER NOT NULL,
			attribute_id INTEGER NOT NULL,
			language_code TEXT NOT NULL,
			value_text TEXT,
			value_number REAL,
			value_bool BOOLEAN,
			value_json TEXT,
			value_option TEXT,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uidx_entity_values_identity ON entity_values (entity_id, attribute_id, language_code)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}

func seedDefinition(t *testing.T, db *gorm.DB, node *snowflake.Node, key string, kind attributedomain.Kind, multilingual bool) snowflake.ID {
	t.Helper()

	def := attributedomain.AttributeDefinition{
		ID:           node.Generate(),
		Key:          key,
		Kind:         kind,
		Multilingual: multilingual,
		Active:       true,
		UpdateTier:   attributedomain.TierEveryRun,
	}
	if err := db.Create(&def).Error; err != nil {
		t.Fatalf("seed definition %s: %v", key, err)
	}
	return def.ID
}

func fxGet(t *testing.T, fx *fixture, key, lang string) *valuedomain.EntityValue {
	t.Helper()

	row, err := fx.valueSvc.Get(context.Background(), fx.entity, fx.defs[key], lang)
	if err != nil {
		t.Fatalf("get %s/%s: %v", key, lang, err)
	}
	if row == nil {
		t.Fatalf("expected stored value for %s/%s", key, lang)
	}
	return row
}
