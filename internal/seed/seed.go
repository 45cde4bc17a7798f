// Package seed bootstraps the minimum rows a fresh deployment needs.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/config"
	membershipdomain "github.com/fakturalabs/faktura/internal/membership/domain"
	tenantdomain "github.com/fakturalabs/faktura/internal/tenant/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTenantName = "Default"
	defaultTenantSlug = "default"
)

// Run applies the configured bootstrap steps idempotently inside one
// transaction.
func Run(cfg config.Config, db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if !cfg.Bootstrap.EnsureDefaultTenant && cfg.Bootstrap.OperatorUserID == 0 {
		return nil
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cfg.Bootstrap.EnsureDefaultTenant {
			if err := ensureDefaultTenantTx(ctx, tx, node); err != nil {
				return err
			}
		}
		if cfg.Bootstrap.OperatorUserID != 0 {
			if err := ensureOperatorTx(ctx, tx, node, snowflake.ID(cfg.Bootstrap.OperatorUserID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureDefaultTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("slug = ?", defaultTenantSlug).First(&tenant).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      defaultTenantName,
		Slug:      defaultTenantSlug,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&tenant).Error
}

// ensureOperatorTx grants the configured operator application scope so the
// deployment has at least one identity that can reach every endpoint.
func ensureOperatorTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID) error {
	var grant membershipdomain.ApplicationUser
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&grant).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	grant = membershipdomain.ApplicationUser{
		ID:        node.Generate(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&grant).Error
}
