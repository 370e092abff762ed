package plan

import (
	"github.com/clubworks/clubledger/internal/plan/repository"
	"github.com/clubworks/clubledger/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
