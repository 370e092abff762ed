package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/cache"
	"github.com/clubworks/clubledger/internal/clock"
	"github.com/clubworks/clubledger/internal/config"
	"github.com/clubworks/clubledger/internal/currency"
	"github.com/clubworks/clubledger/internal/directory"
	"github.com/clubworks/clubledger/internal/feeplan"
	"github.com/clubworks/clubledger/internal/generation"
	"github.com/clubworks/clubledger/internal/logger"
	"github.com/clubworks/clubledger/internal/migration"
	"github.com/clubworks/clubledger/internal/notify"
	"github.com/clubworks/clubledger/internal/observability"
	"github.com/clubworks/clubledger/internal/payment"
	"github.com/clubworks/clubledger/internal/plan"
	"github.com/clubworks/clubledger/internal/receipt"
	"github.com/clubworks/clubledger/internal/scheduler"
	"github.com/clubworks/clubledger/internal/server"
	"github.com/clubworks/clubledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		notify.Module,

		// Functional domains
		currency.Module,
		directory.Module,
		plan.Module,
		feeplan.Module,
		payment.Module,
		generation.Module,
		receipt.Module,

		server.Module,
		scheduler.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
