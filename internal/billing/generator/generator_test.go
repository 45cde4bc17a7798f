package generator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/fakturalabs/faktura/internal/billing/domain"
	"github.com/fakturalabs/faktura/internal/billing/repository"
	"github.com/fakturalabs/faktura/internal/clock"
	"github.com/fakturalabs/faktura/internal/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestGenerateCreatesBillForScheduleWithoutBills(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	insertSchedule(t, db, 1, 10, 5)

	now := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	created, err := g.GenerateDueBills(context.Background(), now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 bill, got %d", created)
	}

	bills := listBills(t, db, 1)
	if len(bills) != 1 {
		t.Fatalf("expected 1 stored bill, got %d", len(bills))
	}
	wantDue := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !bills[0].DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %s, got %s", wantDue, bills[0].DueDate)
	}
	if !bills[0].Amount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected amount 100, got %s", bills[0].Amount)
	}
	if bills[0].CreatedBy != 1 {
		t.Fatalf("expected system actor stamp, got %s", bills[0].CreatedBy)
	}
	if bills[0].ScheduleID == nil || *bills[0].ScheduleID != 1 {
		t.Fatalf("expected schedule reference on generated bill")
	}
}

func TestGenerateIsIdempotentWithinHorizon(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	insertSchedule(t, db, 1, 10, 5)

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if _, err := g.GenerateDueBills(context.Background(), now); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// The bill due 2024-03-05 is within the 10-day horizon, so the second
	// pass selects nothing.
	created, err := g.GenerateDueBills(context.Background(), now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no bills on second run, got %d", created)
	}
	if bills := listBills(t, db, 1); len(bills) != 1 {
		t.Fatalf("expected 1 stored bill, got %d", len(bills))
	}
}

func TestGenerateLaterInMonthDoesNotDuplicate(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	insertSchedule(t, db, 1, 10, 5)

	if _, err := g.GenerateDueBills(context.Background(), time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Late in the month the 03-05 bill no longer satisfies the horizon, so
	// the schedule is re-selected. The due date for March is already
	// billed, so the pass must create nothing rather than fail on the
	// unique index.
	created, err := g.GenerateDueBills(context.Background(), time.Date(2024, time.March, 27, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no bills on re-run, got %d", created)
	}
	if bills := listBills(t, db, 1); len(bills) != 1 {
		t.Fatalf("expected 1 stored bill, got %d", len(bills))
	}
}

func TestGenerateHonorsHorizonBoundary(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	insertSchedule(t, db, 1, 10, 5)
	insertBill(t, db, 1, 10, time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC))

	// 15 days before the existing due date: the horizon is satisfied.
	created, err := g.GenerateDueBills(context.Background(), time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run at 03-20: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no bills 15 days out, got %d", created)
	}

	// 9 days before: the existing bill no longer satisfies the horizon.
	created, err = g.GenerateDueBills(context.Background(), time.Date(2024, time.March, 27, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run at 03-27: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 bill 9 days out, got %d", created)
	}
}

func TestGenerateClampsDayToShortMonth(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	insertSchedule(t, db, 1, 10, 31)

	created, err := g.GenerateDueBills(context.Background(), time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 bill, got %d", created)
	}
	bills := listBills(t, db, 1)
	wantDue := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	if !bills[0].DueDate.Equal(wantDue) {
		t.Fatalf("expected day-31 schedule clamped to %s, got %s", wantDue, bills[0].DueDate)
	}
}

func TestGenerateSkipsDisabledAndOutOfWindowSchedules(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)

	disabled := scheduleFixture(2, 20, 5)
	disabled.Enabled = false
	createSchedule(t, db, disabled)

	var stored billingdomain.BillSchedule
	if err := db.Where("id = ?", 2).First(&stored).Error; err != nil {
		t.Fatalf("reload schedule: %v", err)
	}
	if stored.Enabled {
		t.Fatal("expected schedule created disabled to persist as disabled")
	}

	ended := scheduleFixture(3, 30, 5)
	endAt := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	ended.EndAt = &endAt
	createSchedule(t, db, ended)

	notStarted := scheduleFixture(4, 40, 5)
	notStarted.BeginAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	createSchedule(t, db, notStarted)

	created, err := g.GenerateDueBills(context.Background(), time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no bills for inactive schedules, got %d", created)
	}
}

func TestGenerateWritesOutboxEvents(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	g.outbox = events.NewOutbox(db, g.genID)
	insertSchedule(t, db, 1, 10, 5)

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if _, err := g.GenerateDueBills(context.Background(), now); err != nil {
		t.Fatalf("generate: %v", err)
	}

	var count int64
	if err := db.Table("billing_events").Where("event_type = ?", events.EventBillCreated).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 outbox event, got %d", count)
	}
}

func TestRunOnceUsesClock(t *testing.T) {
	db := setupBillingTestDB(t)
	g := newTestGenerator(t, db)
	g.clock = clock.FixedClock{Instant: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}
	insertSchedule(t, db, 1, 10, 5)

	created, err := g.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 bill, got %d", created)
	}
}

func newTestGenerator(t *testing.T, db *gorm.DB) *Generator {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	return &Generator{
		db:          db,
		log:         zap.NewNop(),
		genID:       node,
		store:       repository.Provide(),
		clock:       clock.SystemClock{},
		horizonDays: 10,
		systemActor: 1,
	}
}

func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS bill_schedules (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			currency VARCHAR(3) NOT NULL,
			day_due INTEGER NOT NULL,
			month_interval INTEGER NOT NULL DEFAULT 1,
			begin_at DATETIME NOT NULL,
			end_at DATETIME,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_by BIGINT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_by BIGINT,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			schedule_id BIGINT,
			name TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			currency VARCHAR(3) NOT NULL,
			due_date DATETIME NOT NULL,
			payment_ref TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_by BIGINT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_by BIGINT,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			disabled_by BIGINT,
			disabled_at DATETIME,
			UNIQUE (schedule_id, due_date)
		)`,
		`CREATE TABLE IF NOT EXISTS billing_events (
			id INTEGER PRIMARY KEY,
			account_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (account_id, dedupe_key)
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func scheduleFixture(id, accountID int64, dayDue int) *billingdomain.BillSchedule {
	return &billingdomain.BillSchedule{
		ID:            snowflake.ID(id),
		AccountID:     snowflake.ID(accountID),
		Name:          fmt.Sprintf("Schedule %d", id),
		Amount:        decimal.RequireFromString("100"),
		Currency:      "USD",
		DayDue:        dayDue,
		MonthInterval: 1,
		BeginAt:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Enabled:       true,
		CreatedBy:     1,
		CreatedAt:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func createSchedule(t *testing.T, db *gorm.DB, schedule *billingdomain.BillSchedule) {
	t.Helper()
	if err := db.Create(schedule).Error; err != nil {
		t.Fatalf("insert schedule: %v", err)
	}
}

func insertSchedule(t *testing.T, db *gorm.DB, id, accountID int64, dayDue int) {
	t.Helper()
	createSchedule(t, db, scheduleFixture(id, accountID, dayDue))
}

func insertBill(t *testing.T, db *gorm.DB, scheduleID, accountID int64, dueDate time.Time) {
	t.Helper()
	sid := snowflake.ID(scheduleID)
	bill := &billingdomain.Bill{
		ID:         snowflake.ID(dueDate.UnixNano()),
		AccountID:  snowflake.ID(accountID),
		ScheduleID: &sid,
		Name:       "Existing bill",
		Amount:     decimal.RequireFromString("100"),
		Currency:   "USD",
		DueDate:    dueDate,
		Metadata:   datatypes.JSONMap{},
		CreatedBy:  1,
		CreatedAt:  dueDate,
		UpdatedAt:  dueDate,
	}
	if err := db.Create(bill).Error; err != nil {
		t.Fatalf("insert bill: %v", err)
	}
}

func listBills(t *testing.T, db *gorm.DB, scheduleID int64) []billingdomain.Bill {
	t.Helper()
	var bills []billingdomain.Bill
	if err := db.Where("schedule_id = ?", scheduleID).Order("due_date").Find(&bills).Error; err != nil {
		t.Fatalf("list bills: %v", err)
	}
	return bills
}
