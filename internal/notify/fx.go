package notify

import (
	"github.com/clubworks/clubledger/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type params struct {
	fx.In

	Log    *zap.Logger
	Cfg    config.Config
	Client *redis.Client `optional:"true"`
}

func provide(p params) Dispatcher {
	return NewDispatcher(p.Log, p.Client, p.Cfg.NotifyChannel)
}

var Module = fx.Module("notify",
	fx.Provide(provide),
)
