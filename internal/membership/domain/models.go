// Package domain contains the three membership relations that record access
// grants. A membership row is a weak relation between a user identifier and a
// scope entity; it owns neither side.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ApplicationUser grants a user access to every tenant and account in the
// system. Reserved for operators and support staff.
type ApplicationUser struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID  `gorm:"not null;uniqueIndex" json:"user_id"`
	GrantedBy *snowflake.ID `gorm:"column:granted_by" json:"granted_by,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ApplicationUser) TableName() string { return "application_users" }

// TenantUser grants a user access to a tenant and, transitively, to every
// account under it.
type TenantUser struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID  `gorm:"not null;uniqueIndex:ux_tenant_users_grant,priority:1" json:"user_id"`
	TenantID  snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_tenant_users_grant,priority:2" json:"tenant_id"`
	GrantedBy *snowflake.ID `gorm:"column:granted_by" json:"granted_by,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (TenantUser) TableName() string { return "tenant_users" }

// AccountUser grants a user access to exactly one account.
type AccountUser struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID  `gorm:"not null;uniqueIndex:ux_account_users_grant,priority:1" json:"user_id"`
	AccountID snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_account_users_grant,priority:2" json:"account_id"`
	GrantedBy *snowflake.ID `gorm:"column:granted_by" json:"granted_by,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AccountUser) TableName() string { return "account_users" }
