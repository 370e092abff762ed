package feeplan

import (
	"github.com/clubworks/clubledger/internal/feeplan/repository"
	"github.com/clubworks/clubledger/internal/feeplan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feeplan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
