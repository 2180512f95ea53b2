package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderkit/placesync/internal/category/domain"
	"github.com/wanderkit/placesync/internal/config"
	"github.com/wanderkit/placesync/internal/translate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Translator translate.Translator
	Config     config.Config
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	translator translate.Translator
	cfg        config.Config
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("category.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		translator: p.Translator,
		cfg:        p.Config,
	}
}

func (s *Service) FindByCode(ctx context.Context, code string) (*domain.Category, error) {
	return s.repo.FindByCode(ctx, s.db, strings.TrimSpace(code))
}

func (s *Service) SyncCodes(ctx context.Context, codes []string) (int, error) {
	unique := make(map[string]struct{}, len(codes))
	created := 0

	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		if _, seen := unique[code]; seen {
			continue
		}
		unique[code] = struct{}{}

		now := time.Now().UTC()
		category := domain.Category{
			ID:        s.genID.Generate(),
			Code:      code,
			Names:     s.translateNames(ctx, code),
			Icon:      code,
			Active:    true,
			SortOrder: 9999,
			CreatedAt: now,
			UpdatedAt: now,
		}

		inserted, err := s.repo.InsertIgnore(ctx, s.db, &category)
		if err != nil {
			s.log.Warn("category insert failed",
				zap.String("code", code),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			created++
			s.log.Info("category registered", zap.String("code", code))
		}
	}
	return created, nil
}

// translateNames builds the display-name map. The baseline name is the
// code itself; other languages are best-effort and omitted on failure.
func (s *Service) translateNames(ctx context.Context, code string) datatypes.JSONMap {
	label := strings.ReplaceAll(code, "_", " ")
	names := datatypes.JSONMap{s.cfg.BaselineLanguage: label}

	for _, lang := range s.cfg.Languages {
		if lang == s.cfg.BaselineLanguage {
			continue
		}
		translated, err := s.translator.Translate(ctx, label, lang)
		if err != nil {
			s.log.Warn("category name translation failed",
				zap.String("code", code),
				zap.String("language", lang),
				zap.Error(err),
			)
			continue
		}
		names[lang] = translated
	}
	return names
}
