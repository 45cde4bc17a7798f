// Package repository implements the billing store on gorm.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fakturalabs/faktura/internal/billing/domain"
	"gorm.io/gorm"
)

type gormStore struct{}

// Provide constructs the gorm-backed billing store.
func Provide() domain.Store {
	return gormStore{}
}

// ListDueSchedules is the generation scan. A schedule qualifies when it is
// enabled, inside its begin/end window, and has no bill due at or beyond the
// horizon cutoff.
func (gormStore) ListDueSchedules(ctx context.Context, db *gorm.DB, now time.Time, horizonDays int) ([]domain.BillSchedule, error) {
	cutoff := truncateToDay(now).AddDate(0, 0, horizonDays)

	var schedules []domain.BillSchedule
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.account_id, s.name, s.amount, s.currency, s.day_due,
		        s.month_interval, s.begin_at, s.end_at, s.enabled,
		        s.created_by, s.created_at, s.updated_by, s.updated_at
		 FROM bill_schedules s
		 WHERE s.enabled = ?
		   AND s.begin_at <= ?
		   AND (s.end_at IS NULL OR s.end_at >= ?)
		   AND NOT EXISTS (
			SELECT 1
			FROM bills b
			WHERE b.schedule_id = s.id
			  AND b.due_date >= ?
		   )
		 ORDER BY s.id`,
		true,
		now,
		now,
		cutoff,
	).Scan(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (gormStore) HasBillForScheduleOn(ctx context.Context, db *gorm.DB, scheduleID snowflake.ID, dueDate time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM bills
		 WHERE schedule_id = ?
		   AND due_date = ?`,
		scheduleID,
		dueDate,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (gormStore) InsertBills(ctx context.Context, db *gorm.DB, bills []domain.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&bills).Error
}

func (gormStore) InsertSchedule(ctx context.Context, db *gorm.DB, schedule *domain.BillSchedule) error {
	if err := domain.ValidateSchedule(schedule); err != nil {
		return err
	}
	return db.WithContext(ctx).Create(schedule).Error
}

func (gormStore) ListSchedulesByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]domain.BillSchedule, error) {
	var schedules []domain.BillSchedule
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (gormStore) FindBillByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	err := db.WithContext(ctx).Where("id = ?", id).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

func (gormStore) ListBillsByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("due_date DESC, id DESC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func truncateToDay(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
