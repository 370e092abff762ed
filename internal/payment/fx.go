package payment

import (
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	paymentrepo "github.com/clubworks/clubledger/internal/payment/repository"
	"github.com/clubworks/clubledger/internal/payment/service"
	"github.com/clubworks/clubledger/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(paymentrepo.Provide),
	fx.Provide(repository.ProvideStore[paymentdomain.Payment]),
	fx.Provide(service.NewService),
)
