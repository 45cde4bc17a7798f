// Package domain contains persistence models for bills and the recurring
// schedules they are generated from.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillSchedule is a recurring template. DayDue and MonthInterval are fixed at
// creation and drive due-date computation; amount and currency changes apply
// prospectively only.
type BillSchedule struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID     snowflake.ID    `gorm:"not null;index" json:"account_id"`
	Name          string          `gorm:"type:text;not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	DayDue        int             `gorm:"not null" json:"day_due"`
	MonthInterval int             `gorm:"not null;default:1" json:"month_interval"`
	BeginAt       time.Time       `gorm:"not null" json:"begin_at"`
	EndAt         *time.Time      `gorm:"column:end_at" json:"end_at,omitempty"`
	Enabled       bool            `gorm:"not null" json:"enabled"`
	CreatedBy     snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedBy     *snowflake.ID   `gorm:"column:updated_by" json:"updated_by,omitempty"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BillSchedule) TableName() string { return "bill_schedules" }

// Bill is a single materialized charge against an account. Bills referencing
// a schedule are created only by the generator; the unique index on
// (schedule_id, due_date) makes a double-generated bill fail loudly instead
// of double-billing.
type Bill struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID  snowflake.ID      `gorm:"not null;index" json:"account_id"`
	ScheduleID *snowflake.ID     `gorm:"index;uniqueIndex:ux_bills_schedule_due,priority:1" json:"schedule_id,omitempty"`
	Name       string            `gorm:"type:text;not null" json:"name"`
	Amount     decimal.Decimal   `gorm:"type:numeric(20,4);not null" json:"amount"`
	Currency   string            `gorm:"type:varchar(3);not null" json:"currency"`
	DueDate    time.Time         `gorm:"not null;uniqueIndex:ux_bills_schedule_due,priority:2" json:"due_date"`
	PaymentRef *string           `gorm:"column:payment_ref;type:text" json:"payment_ref,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedBy  snowflake.ID      `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedBy  *snowflake.ID     `gorm:"column:updated_by" json:"updated_by,omitempty"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DisabledBy *snowflake.ID     `gorm:"column:disabled_by" json:"disabled_by,omitempty"`
	DisabledAt *time.Time        `gorm:"column:disabled_at" json:"disabled_at,omitempty"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }
