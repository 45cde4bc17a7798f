// Package domain contains the audit trail written by the access resolver and
// batch jobs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// Actions recorded by this service.
const (
	ActionAccessDenied   = "access.denied"
	ActionBillsGenerated = "billing.bills_generated"
)

// Target types recorded by this service.
const (
	TargetTypeAccount     = "account"
	TargetTypeTenant      = "tenant"
	TargetTypeApplication = "application"
	TargetTypeSchedule    = "bill_schedule"
)

// AuditLog captures an immutable record of a security or billing action.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	TenantID   *snowflake.ID     `gorm:"index"`
	ActorType  string            `gorm:"type:text;not null"`
	ActorID    *string           `gorm:"type:text"`
	Action     string            `gorm:"type:text;not null;index"`
	TargetType string            `gorm:"type:text;not null"`
	TargetID   *string           `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
