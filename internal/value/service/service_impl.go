package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/wanderkit/placesync/internal/attribute/domain"
	"github.com/wanderkit/placesync/internal/clock"
	"github.com/wanderkit/placesync/internal/value/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Config holds the writer's snapshot policy.
type Config struct {
	// ClearSnapshotOnEmpty makes an empty snapshot fetch erase the stored
	// collection instead of leaving it untouched.
	ClearSnapshotOnEmpty bool
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Config Config `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	cfg   Config
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("value.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		cfg:   p.Config,
	}
}

func (s *Service) Write(ctx context.Context, entityID, attributeID snowflake.ID, languageCode string, value domain.TypedValue) error {
	if languageCode == "" {
		languageCode = domain.NoLanguage
	}

	row, err := s.buildRow(entityID, attributeID, languageCode, value)
	if err != nil {
		return err
	}
	return s.repo.Upsert(ctx, s.db, row)
}

func (s *Service) WriteSnapshot(ctx context.Context, entityID, attributeID snowflake.ID, entries []domain.SnapshotEntry) error {
	if len(entries) == 0 && !s.cfg.ClearSnapshotOnEmpty {
		s.log.Debug("empty snapshot, keeping prior value",
			zap.String("entity_id", entityID.String()),
			zap.String("attribute_id", attributeID.String()),
		)
		return nil
	}
	if entries == nil {
		entries = []domain.SnapshotEntry{}
	}
	return s.Write(ctx, entityID, attributeID, domain.NoLanguage, domain.JSONValue(entries))
}

func (s *Service) Get(ctx context.Context, entityID, attributeID snowflake.ID, languageCode string) (*domain.EntityValue, error) {
	if languageCode == "" {
		languageCode = domain.NoLanguage
	}
	return s.repo.Find(ctx, s.db, entityID, attributeID, languageCode)
}

// buildRow maps the tagged value onto the single matching storage slot.
func (s *Service) buildRow(entityID, attributeID snowflake.ID, languageCode string, value domain.TypedValue) (*domain.EntityValue, error) {
	row := &domain.EntityValue{
		ID:           s.genID.Generate(),
		EntityID:     entityID,
		AttributeID:  attributeID,
		LanguageCode: languageCode,
		UpdatedAt:    s.clock.Now().UTC(),
	}

	switch value.Kind {
	case attributedomain.KindText:
		text := value.Text
		row.ValueText = &text
	case attributedomain.KindNumber:
		number := value.Number
		row.ValueNumber = &number
	case attributedomain.KindBoolean:
		b := value.Bool
		row.ValueBool = &b
	case attributedomain.KindJSON:
		encoded, err := json.Marshal(value.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode json value: %w", err)
		}
		row.ValueJSON = datatypes.JSON(encoded)
	case attributedomain.KindOption:
		option := value.Option
		row.ValueOption = &option
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, value.Kind)
	}

	return row, nil
}
