// Package scheduler runs monthly payment generation in the background.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/clubworks/clubledger/internal/billing"
	"github.com/clubworks/clubledger/internal/clock"
	"github.com/clubworks/clubledger/internal/config"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	generationdomain "github.com/clubworks/clubledger/internal/generation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pollInterval = time.Hour

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Config    *config.GenerationConfigHolder
	Directory directorydomain.Repository
	Generator generationdomain.Service
}

type Worker struct {
	log       *zap.Logger
	clock     clock.Clock
	config    *config.GenerationConfigHolder
	directory directorydomain.Repository
	generator generationdomain.Service

	lastRun billing.Month
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:       p.Log.Named("scheduler"),
		clock:     p.Clock,
		config:    p.Config,
		directory: p.Directory,
		generator: p.Generator,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("scheduled generation failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	return w.run(ctx, w.config.Current())
}

func (w *Worker) run(ctx context.Context, cfg config.GenerationConfig) error {
	if !cfg.AutoGenerate {
		return nil
	}

	now := w.clock.Now()
	if now.Day() < cfg.DayOfMonth {
		return nil
	}

	month := billing.MonthOf(now)
	if month == w.lastRun {
		return nil
	}

	orgs, err := w.directory.ListOrganizations(ctx)
	if err != nil {
		return err
	}

	for _, org := range orgs {
		orgID := org.ID.String()
		result, err := w.generator.Commit(ctx, generationdomain.GenerateRequest{
			Month:          month.String(),
			OrganizationID: &orgID,
		})
		if err != nil {
			// Another instance holds the lock; its run covers this month.
			if errors.Is(err, generationdomain.ErrGenerationLocked) {
				w.log.Info("generation already running elsewhere",
					zap.String("month", month.String()),
					zap.String("organization_id", orgID),
				)
				continue
			}
			return err
		}
		w.log.Info("scheduled generation finished",
			zap.String("month", month.String()),
			zap.String("organization_id", orgID),
			zap.Int("created", result.CreatedCount),
			zap.Int("skipped", result.SkippedCount),
		)
	}

	w.lastRun = month
	return nil
}
