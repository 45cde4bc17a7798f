// Package observability bundles logging and tracing setup.
package observability

import (
	"github.com/fakturalabs/faktura/internal/config"
	"github.com/fakturalabs/faktura/internal/observability/logger"
	"github.com/fakturalabs/faktura/internal/observability/metrics"
	"github.com/fakturalabs/faktura/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(logger.New),
	fx.Invoke(tracing.NewProvider),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(metrics.GeneratorWithConfig),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)
