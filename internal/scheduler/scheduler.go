// Package scheduler triggers the bill generator on a cron cadence.
package scheduler

import (
	"context"
	"time"

	"github.com/fakturalabs/faktura/internal/billing/generator"
	"github.com/fakturalabs/faktura/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// runTimeout bounds a single generation pass.
const runTimeout = 5 * time.Minute

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Log       *zap.Logger
	Cfg       config.Config
	Generator *generator.Generator
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	gen  *generator.Generator
}

// New builds the cron runner and registers it on the fx lifecycle. Entries
// run through SkipIfStillRunning, so an overdue pass never overlaps a pass
// already in flight.
func New(p Params) (*Scheduler, error) {
	log := p.Log.Named("scheduler")
	cronLog := cronLogger{log: log.Sugar()}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(
				cron.Recover(cronLog),
				cron.SkipIfStillRunning(cronLog),
			),
		),
		log: log,
		gen: p.Generator,
	}

	spec := p.Cfg.Generator.CronSpec
	if _, err := s.cron.AddFunc(spec, s.runGeneration); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.cron.Start()
			log.Info("scheduler started", zap.String("cron_spec", spec))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := s.cron.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
			log.Info("scheduler stopped")
			return nil
		},
	})

	return s, nil
}

func (s *Scheduler) runGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	created, err := s.gen.RunOnce(ctx)
	if err != nil {
		s.log.Error("generation pass failed", zap.Error(err))
		return
	}
	s.log.Info("generation pass completed", zap.Int("bills_created", created))
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
