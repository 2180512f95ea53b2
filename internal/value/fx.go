package value

import (
	"github.com/wanderkit/placesync/internal/config"
	"github.com/wanderkit/placesync/internal/value/repository"
	"github.com/wanderkit/placesync/internal/value/service"
	"go.uber.org/fx"
)

var Module = fx.Module("value.service",
	fx.Provide(repository.Provide),
	fx.Provide(provideConfig),
	fx.Provide(service.New),
)

func provideConfig(cfg config.Config) service.Config {
	return service.Config{
		ClearSnapshotOnEmpty: cfg.SnapshotClearOnEmpty,
	}
}
