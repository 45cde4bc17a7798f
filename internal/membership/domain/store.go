package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidScope = errors.New("invalid_scope")
)

// Store is the read side consulted by the access resolver, plus the grant
// writes used by bootstrap and administration.
type Store interface {
	HasApplicationMembership(ctx context.Context, db *gorm.DB, userID snowflake.ID) (bool, error)
	HasTenantMembership(ctx context.Context, db *gorm.DB, userID, tenantID snowflake.ID) (bool, error)
	HasAccountMembership(ctx context.Context, db *gorm.DB, userID, accountID snowflake.ID) (bool, error)

	GrantApplication(ctx context.Context, db *gorm.DB, grant *ApplicationUser) error
	GrantTenant(ctx context.Context, db *gorm.DB, grant *TenantUser) error
	GrantAccount(ctx context.Context, db *gorm.DB, grant *AccountUser) error
}
