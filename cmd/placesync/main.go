package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/wanderkit/placesync/internal/attribute"
	"github.com/wanderkit/placesync/internal/category"
	"github.com/wanderkit/placesync/internal/clock"
	"github.com/wanderkit/placesync/internal/config"
	"github.com/wanderkit/placesync/internal/location"
	"github.com/wanderkit/placesync/internal/migration"
	"github.com/wanderkit/placesync/internal/observability"
	"github.com/wanderkit/placesync/internal/pipeline"
	"github.com/wanderkit/placesync/internal/provider"
	"github.com/wanderkit/placesync/internal/translate"
	"github.com/wanderkit/placesync/internal/value"
	"github.com/wanderkit/placesync/internal/worklist"
	"github.com/wanderkit/placesync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// External clients
		provider.Module,
		translate.Module,

		// Domain services
		attribute.Module,
		category.Module,
		location.Module,
		value.Module,
		pipeline.Module,

		fx.Invoke(StartRun),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// StartRun executes the configured phases once and shuts the process down.
func StartRun(lc fx.Lifecycle, sh fx.Shutdowner, svc *pipeline.Service, cfg config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				run(context.Background(), svc, cfg, log)
				if err := sh.Shutdown(); err != nil {
					log.Error("shutdown failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

func run(ctx context.Context, svc *pipeline.Service, cfg config.Config, log *zap.Logger) {
	log = log.With(zap.String("run_id", uuid.NewString()))

	entries, err := worklist.Load(cfg.WorklistPath)
	if err != nil {
		log.Error("worklist load failed", zap.String("path", cfg.WorklistPath), zap.Error(err))
		return
	}
	if len(entries) == 0 {
		log.Warn("worklist is empty, nothing to do", zap.String("path", cfg.WorklistPath))
		return
	}
	log.Info("run starting",
		zap.Int("entries", len(entries)),
		zap.Bool("import", cfg.RunImport),
		zap.Bool("discovery", cfg.RunDiscovery),
		zap.Bool("category_sync", cfg.RunCategorySync),
		zap.Bool("enrichment", cfg.RunEnrichment),
		zap.Bool("backfill", cfg.RunBackfill),
	)

	if cfg.RunImport {
		svc.Import(ctx, entries)
	}
	if cfg.RunDiscovery {
		svc.Discover(ctx, entries)
	}
	if cfg.RunCategorySync {
		if err := svc.SyncCategories(ctx, entries); err != nil {
			log.Error("category sync failed", zap.Error(err))
		}
	}
	if cfg.RunEnrichment {
		svc.Enrich(ctx, entries)
	}
	if cfg.RunBackfill {
		svc.Backfill(ctx, entries, cfg.ForceBackfill)
	}

	log.Info("run finished")
}
