package location

import (
	"github.com/wanderkit/placesync/internal/location/repository"
	"github.com/wanderkit/placesync/internal/location/service"
	"go.uber.org/fx"
)

var Module = fx.Module("location.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
