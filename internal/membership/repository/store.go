// Package repository implements the membership store on gorm.
package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/membership/domain"
	"gorm.io/gorm"
)

type gormStore struct{}

// Provide constructs the gorm-backed membership store.
func Provide() domain.Store {
	return gormStore{}
}

func (gormStore) HasApplicationMembership(ctx context.Context, db *gorm.DB, userID snowflake.ID) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM application_users
		 WHERE user_id = ?`,
		userID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (gormStore) HasTenantMembership(ctx context.Context, db *gorm.DB, userID, tenantID snowflake.ID) (bool, error) {
	if userID == 0 || tenantID == 0 {
		return false, nil
	}
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM tenant_users
		 WHERE user_id = ? AND tenant_id = ?`,
		userID,
		tenantID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (gormStore) HasAccountMembership(ctx context.Context, db *gorm.DB, userID, accountID snowflake.ID) (bool, error) {
	if userID == 0 || accountID == 0 {
		return false, nil
	}
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM account_users
		 WHERE user_id = ? AND account_id = ?`,
		userID,
		accountID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (gormStore) GrantApplication(ctx context.Context, db *gorm.DB, grant *domain.ApplicationUser) error {
	if grant == nil || grant.UserID == 0 {
		return domain.ErrInvalidUser
	}
	return db.WithContext(ctx).Create(grant).Error
}

func (gormStore) GrantTenant(ctx context.Context, db *gorm.DB, grant *domain.TenantUser) error {
	if grant == nil || grant.UserID == 0 {
		return domain.ErrInvalidUser
	}
	if grant.TenantID == 0 {
		return domain.ErrInvalidScope
	}
	return db.WithContext(ctx).Create(grant).Error
}

func (gormStore) GrantAccount(ctx context.Context, db *gorm.DB, grant *domain.AccountUser) error {
	if grant == nil || grant.UserID == 0 {
		return domain.ErrInvalidUser
	}
	if grant.AccountID == 0 {
		return domain.ErrInvalidScope
	}
	return db.WithContext(ctx).Create(grant).Error
}
