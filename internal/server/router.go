package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/fakturalabs/faktura/internal/config"
	"github.com/fakturalabs/faktura/internal/observability/logger"
	"github.com/fakturalabs/faktura/internal/observability/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config, s *Server) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware(cfg.ServiceName))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(engine, s)
	return engine
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	v1 := engine.Group("/v1", s.Principal())

	v1.GET("/access/accounts/:id", s.CheckAccountAccess)
	v1.GET("/access/tenants/:id", s.CheckTenantAccess)
	v1.GET("/access/application", s.CheckApplicationAccess)

	v1.GET("/tenants", s.ListTenants)
	v1.GET("/tenants/:id", s.GetTenant)
	v1.GET("/tenants/:id/accounts", s.ListTenantAccounts)
	v1.GET("/accounts/:id", s.GetAccount)

	v1.GET("/accounts/:id/schedules", s.ListAccountSchedules)
	v1.POST("/accounts/:id/schedules", s.CreateSchedule)
	v1.GET("/accounts/:id/bills", s.ListAccountBills)
	v1.GET("/bills/:id", s.GetBill)
	v1.POST("/billing/run", s.RunBillingNow)

	v1.GET("/audit-logs", s.ListAuditLogs)
}

// RunHTTP owns the listener lifecycle. Startup failures other than a clean
// shutdown are fatal, fx tears the app down through the shutdowner.
func RunHTTP(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
