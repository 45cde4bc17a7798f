package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidDayDue   = errors.New("invalid_day_due")
	ErrInvalidInterval = errors.New("invalid_month_interval")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrBillNotFound    = errors.New("bill_not_found")
)

// ValidateSchedule checks the creation invariants for a bill schedule.
func ValidateSchedule(schedule *BillSchedule) error {
	if schedule == nil || schedule.AccountID == 0 {
		return ErrInvalidAccount
	}
	if strings.TrimSpace(schedule.Name) == "" {
		return ErrInvalidName
	}
	if schedule.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(schedule.Currency)) != 3 {
		return ErrInvalidCurrency
	}
	if schedule.DayDue < 1 || schedule.DayDue > 31 {
		return ErrInvalidDayDue
	}
	if schedule.MonthInterval < 1 {
		return ErrInvalidInterval
	}
	if schedule.EndAt != nil && schedule.EndAt.Before(schedule.BeginAt) {
		return ErrInvalidPeriod
	}
	return nil
}
