// Package repository implements the tenant domain repository on gorm.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/tenant/domain"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide constructs the gorm-backed tenant repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) InsertTenant(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	if tenant == nil {
		return domain.ErrInvalidName
	}
	if strings.TrimSpace(tenant.Name) == "" {
		return domain.ErrInvalidName
	}
	if strings.TrimSpace(tenant.Slug) == "" {
		return domain.ErrInvalidSlug
	}
	return db.WithContext(ctx).Create(tenant).Error
}

func (gormRepository) InsertAccount(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	if account == nil || strings.TrimSpace(account.Name) == "" {
		return domain.ErrInvalidName
	}
	return db.WithContext(ctx).Create(account).Error
}

func (gormRepository) FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (gormRepository) FindTenantBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (gormRepository) FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (gormRepository) ListTenants(ctx context.Context, db *gorm.DB) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	if err := db.WithContext(ctx).Order("id").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (gormRepository) ListAccountsByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
