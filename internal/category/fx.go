package category

import (
	"github.com/wanderkit/placesync/internal/category/repository"
	"github.com/wanderkit/placesync/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
