package migration

import (
	"github.com/clubworks/clubledger/internal/config"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"github.com/clubworks/clubledger/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations target postgres; the other dialects are
		// for local development and tests and take the model schema as is.
		if cfg.DBType != "postgres" {
			if err := conn.AutoMigrate(
				&currencydomain.Currency{},
				&directorydomain.Organization{},
				&directorydomain.Club{},
				&directorydomain.Student{},
				&plandomain.Plan{},
				&feeplandomain.StudentFeePlan{},
				&paymentdomain.Payment{},
			); err != nil {
				return err
			}
			return seed.EnsureDefaultCurrencies(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		return seed.EnsureDefaultCurrencies(conn)
	}),
)
