package attribute

import (
	"github.com/wanderkit/placesync/internal/attribute/repository"
	"github.com/wanderkit/placesync/internal/attribute/service"
	"go.uber.org/fx"
)

var Module = fx.Module("attribute.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
