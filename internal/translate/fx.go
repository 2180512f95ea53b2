package translate

import (
	"github.com/redis/go-redis/v9"
	"github.com/wanderkit/placesync/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("translate",
	fx.Provide(provideTranslator),
	fx.Provide(provideOrchestrator),
)

func provideTranslator(cfg config.Config, log *zap.Logger) Translator {
	translator := NewOpenAIClient(cfg, log)
	if cfg.RedisAddr == "" {
		return translator
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return WithCache(translator, rdb, cfg.CacheTTL, log)
}

func provideOrchestrator(translator Translator, cfg config.Config, log *zap.Logger) *Orchestrator {
	return NewOrchestrator(translator, cfg.BaselineLanguage, log)
}
