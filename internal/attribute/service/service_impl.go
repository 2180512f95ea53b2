package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderkit/placesync/internal/attribute/domain"
	"github.com/wanderkit/placesync/pkg/db"
	"github.com/wanderkit/placesync/pkg/flatten"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("attribute.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, domain.ErrInvalidKey
	}
	return s.repo.Exists(ctx, s.db, key)
}

func (s *Service) RegisterIfAbsent(ctx context.Context, key string, kind domain.Kind) (*domain.AttributeDefinition, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, domain.ErrInvalidKey
	}

	now := time.Now().UTC()
	def := domain.AttributeDefinition{
		ID:         s.genID.Generate(),
		Key:        key,
		Kind:       kind,
		Active:     false,
		UpdateTier: domain.TierEveryRun,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	inserted, err := s.repo.InsertIgnore(ctx, s.db, &def)
	if err != nil {
		// Some drivers surface the conflict instead of ignoring it.
		if !db.IsDuplicateKeyErr(err) {
			return nil, false, err
		}
		inserted = false
	}
	if inserted {
		return &def, true, nil
	}

	existing, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Service) Discover(ctx context.Context, record map[string]any) domain.DiscoveryReport {
	report := domain.DiscoveryReport{}
	for _, key := range flatten.Keys(record) {
		report.KeysSeen++
		kind := domain.InferKind(record, key)
		_, created, err := s.RegisterIfAbsent(ctx, key, kind)
		if err != nil {
			report.Failed++
			s.log.Warn("attribute registration failed",
				zap.String("key", key),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			continue
		}
		if created {
			report.Registered++
			s.log.Info("attribute registered",
				zap.String("key", key),
				zap.String("kind", string(kind)),
			)
		}
	}
	return report
}

func (s *Service) ActiveDefinitionsFor(ctx context.Context, categoryID snowflake.ID, tiers []domain.UpdateTier) ([]domain.AttributeDefinition, error) {
	if len(tiers) == 0 {
		tiers = []domain.UpdateTier{domain.TierEveryRun}
	}
	return s.repo.ListActive(ctx, s.db, categoryID, tiers)
}

func (s *Service) LinkAllToCategory(ctx context.Context, categoryID snowflake.ID) (int, error) {
	defs, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, def := range defs {
		inserted, err := s.repo.InsertLinkIgnore(ctx, s.db, &domain.AttributeCategory{
			AttributeID: def.ID,
			CategoryID:  categoryID,
		})
		if err != nil {
			s.log.Warn("attribute link failed",
				zap.String("key", def.Key),
				zap.String("category_id", categoryID.String()),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			linked++
		}
	}
	return linked, nil
}
