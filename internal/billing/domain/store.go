package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Store reads schedules and writes generated bills.
type Store interface {
	// ListDueSchedules selects enabled schedules inside their active window
	// that have no bill due at or beyond now + horizonDays.
	ListDueSchedules(ctx context.Context, db *gorm.DB, now time.Time, horizonDays int) ([]BillSchedule, error)
	// HasBillForScheduleOn reports whether a bill already exists for the
	// schedule at exactly dueDate. The horizon scan can re-select a
	// schedule whose only bill is due earlier in the current month; this
	// check keeps a re-run from inserting that bill twice.
	HasBillForScheduleOn(ctx context.Context, db *gorm.DB, scheduleID snowflake.ID, dueDate time.Time) (bool, error)
	// InsertBills persists a generation batch. Callers wrap it in a
	// transaction so the batch commits all-or-nothing.
	InsertBills(ctx context.Context, db *gorm.DB, bills []Bill) error

	InsertSchedule(ctx context.Context, db *gorm.DB, schedule *BillSchedule) error
	ListSchedulesByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]BillSchedule, error)
	FindBillByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	ListBillsByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]Bill, error)
}
