package currency

import (
	"github.com/clubworks/clubledger/internal/currency/repository"
	"github.com/clubworks/clubledger/internal/currency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("currency.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
