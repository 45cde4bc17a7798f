package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidSlug    = errors.New("invalid_slug")
	ErrTenantNotFound = errors.New("tenant_not_found")
)

// Repository reads and writes tenants and accounts. Find methods return nil
// without an error when the row is absent; callers decide whether absence is
// an error at their layer.
type Repository interface {
	InsertTenant(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	InsertAccount(ctx context.Context, db *gorm.DB, account *Account) error
	FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindTenantBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	ListTenants(ctx context.Context, db *gorm.DB) ([]Tenant, error)
	ListAccountsByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Account, error)
}
