// Package service implements audit recording.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/audit/domain"
	obsctx "github.com/fakturalabs/faktura/internal/observability/context"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}
	if requestID := obsctx.RequestIDFromContext(ctx); requestID != "" {
		if _, ok := entry.Metadata["request_id"]; !ok {
			entry.Metadata["request_id"] = requestID
		}
	}
	if entry.ActorID == nil {
		if actorType, actorID := obsctx.ActorFromContext(ctx); actorID != "" {
			entry.ActorID = &actorID
			if entry.ActorType == "" {
				entry.ActorType = actorType
			}
		}
	}
	return s.repo.Insert(ctx, s.db, entry)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
