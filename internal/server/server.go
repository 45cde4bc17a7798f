// Package server exposes the access checks and billing operations over HTTP.
// The layer is deliberately thin: handlers parse, delegate, and translate
// errors, all decisions live in the domain services.
package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/access"
	auditdomain "github.com/fakturalabs/faktura/internal/audit/domain"
	billingdomain "github.com/fakturalabs/faktura/internal/billing/domain"
	"github.com/fakturalabs/faktura/internal/billing/generator"
	"github.com/fakturalabs/faktura/internal/config"
	"github.com/fakturalabs/faktura/internal/identity"
	tenantdomain "github.com/fakturalabs/faktura/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const contextUserIDKey = "user_id"

type Params struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Access    access.Service
	Tenants   tenantdomain.Repository
	Billing   billingdomain.Store
	Audit     auditdomain.Service
	Resolver  *identity.Resolver
	Generator *generator.Generator
}

type Server struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	accessSvc  access.Service
	tenantRepo tenantdomain.Repository
	billing    billingdomain.Store
	auditSvc   auditdomain.Service
	resolver   *identity.Resolver
	generator  *generator.Generator
	runLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("server"),
		genID:      p.GenID,
		accessSvc:  p.Access,
		tenantRepo: p.Tenants,
		billing:    p.Billing,
		auditSvc:   p.Audit,
		resolver:   p.Resolver,
		generator:  p.Generator,
		runLimiter: newRateLimiter(2, time.Minute),
	}
}

// currentUserID reads the resolved caller identity set by Principal. The zero
// id means the caller presented no usable identity; access checks treat it as
// an unconditional denial.
func (s *Server) currentUserID(c *gin.Context) snowflake.ID {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0
	}
	id, ok := value.(snowflake.ID)
	if !ok {
		return 0
	}
	return id
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, newValidationError(name, "missing_id", name+" is required")
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(name, "invalid_id", "invalid "+name)
	}
	return id, nil
}
