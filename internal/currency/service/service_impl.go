package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const cacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	Log   *zap.Logger
	Repo  currencydomain.Repository
	Redis *redis.Client `optional:"true"`
}

// Service resolves currency codes against the master list, with a short
// redis cache in front of the database. Staleness up to the TTL is fine
// for a directory that changes rarely.
type Service struct {
	log   *zap.Logger
	repo  currencydomain.Repository
	redis *redis.Client
}

func NewService(p Params) currencydomain.Directory {
	return &Service{
		log:   p.Log.Named("currency.service"),
		repo:  p.Repo,
		redis: p.Redis,
	}
}

func (s *Service) LookupActive(ctx context.Context, code string) (*currencydomain.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, currencydomain.ErrNotFound
	}

	if cached := s.fromCache(ctx, code); cached != nil {
		if !cached.IsActive {
			return nil, currencydomain.ErrInactive
		}
		return cached, nil
	}

	currency, err := s.repo.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if currency == nil {
		return nil, currencydomain.ErrNotFound
	}

	s.store(ctx, currency)

	if !currency.IsActive {
		return nil, currencydomain.ErrInactive
	}
	return currency, nil
}

func (s *Service) fromCache(ctx context.Context, code string) *currencydomain.Currency {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		return nil
	}
	var c currencydomain.Currency
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	return &c
}

func (s *Service) store(ctx context.Context, c *currencydomain.Currency) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(c.Code), raw, cacheTTL).Err(); err != nil {
		s.log.Debug("currency cache write failed", zap.Error(err))
	}
}

func cacheKey(code string) string {
	return "currency:" + code
}
