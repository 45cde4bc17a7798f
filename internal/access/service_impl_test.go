package access

import (
	"context"
	"fmt"
	"testing"

	auditrepository "github.com/fakturalabs/faktura/internal/audit/repository"
	auditservice "github.com/fakturalabs/faktura/internal/audit/service"
	"github.com/fakturalabs/faktura/internal/cache"
	membershiprepository "github.com/fakturalabs/faktura/internal/membership/repository"
	tenantrepository "github.com/fakturalabs/faktura/internal/tenant/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestApplicationGrantCoversEverything(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertAccount(t, db, 10, 1)
	insertApplicationUser(t, db, 100)

	svc := newTestService(t, db)

	ok, err := svc.CheckAccountAccess(context.Background(), 100, 10)
	if err != nil {
		t.Fatalf("check account: %v", err)
	}
	if !ok {
		t.Fatalf("expected application grant to cover account access")
	}

	ok, err = svc.CheckTenantAccess(context.Background(), 100, 1)
	if err != nil {
		t.Fatalf("check tenant: %v", err)
	}
	if !ok {
		t.Fatalf("expected application grant to cover tenant access")
	}

	// Unknown targets degrade to the application check and still pass.
	ok, err = svc.CheckAccountAccess(context.Background(), 100, 999)
	if err != nil {
		t.Fatalf("check unknown account: %v", err)
	}
	if !ok {
		t.Fatalf("expected application grant to cover unknown account")
	}
	ok, err = svc.CheckTenantAccess(context.Background(), 100, 999)
	if err != nil {
		t.Fatalf("check unknown tenant: %v", err)
	}
	if !ok {
		t.Fatalf("expected application grant to cover unknown tenant")
	}
}

func TestTenantGrantCoversOwnedAccounts(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertTenant(t, db, 2)
	insertAccount(t, db, 10, 1)
	insertAccount(t, db, 20, 2)
	insertTenantUser(t, db, 101, 1)

	svc := newTestService(t, db)

	ok, err := svc.CheckAccountAccess(context.Background(), 101, 10)
	if err != nil {
		t.Fatalf("check owned account: %v", err)
	}
	if !ok {
		t.Fatalf("expected tenant grant to cover accounts under the tenant")
	}

	ok, err = svc.CheckTenantAccess(context.Background(), 101, 1)
	if err != nil {
		t.Fatalf("check tenant: %v", err)
	}
	if !ok {
		t.Fatalf("expected tenant grant to cover the tenant itself")
	}

	ok, err = svc.CheckAccountAccess(context.Background(), 101, 20)
	if err != nil {
		t.Fatalf("check foreign account: %v", err)
	}
	if ok {
		t.Fatalf("expected account under another tenant to be denied")
	}

	ok, err = svc.CheckApplicationAccess(context.Background(), 101)
	if err != nil {
		t.Fatalf("check application: %v", err)
	}
	if ok {
		t.Fatalf("expected tenant member to fail the application check")
	}
}

func TestAccountGrantDoesNotEscalate(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertAccount(t, db, 10, 1)
	insertAccountUser(t, db, 102, 10)

	svc := newTestService(t, db)

	ok, err := svc.CheckAccountAccess(context.Background(), 102, 10)
	if err != nil {
		t.Fatalf("check account: %v", err)
	}
	if !ok {
		t.Fatalf("expected account grant to cover the account")
	}

	ok, err = svc.CheckTenantAccess(context.Background(), 102, 1)
	if err != nil {
		t.Fatalf("check tenant: %v", err)
	}
	if ok {
		t.Fatalf("expected account grant not to escalate to tenant access")
	}
}

func TestNoGrantDeniesAndRecords(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertAccount(t, db, 10, 1)

	svc := newTestService(t, db)

	ok, err := svc.CheckAccountAccess(context.Background(), 103, 10)
	if err != nil {
		t.Fatalf("check account: %v", err)
	}
	if ok {
		t.Fatalf("expected denial without any grant")
	}

	ok, err = svc.CheckTenantAccess(context.Background(), 103, 1)
	if err != nil {
		t.Fatalf("check tenant: %v", err)
	}
	if ok {
		t.Fatalf("expected denial without any grant")
	}

	ok, err = svc.CheckApplicationAccess(context.Background(), 103)
	if err != nil {
		t.Fatalf("check application: %v", err)
	}
	if ok {
		t.Fatalf("expected denial without any grant")
	}

	if got := countDenials(t, db); got != 3 {
		t.Fatalf("expected 3 recorded denials, got %d", got)
	}
}

func TestUnknownAccountFallsThroughToApplicationCheck(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertTenantUser(t, db, 104, 1)

	svc := newTestService(t, db)

	// The account does not exist, so the tenant grant cannot match and the
	// check must degrade to the application level, not fail.
	ok, err := svc.CheckAccountAccess(context.Background(), 104, 999)
	if err != nil {
		t.Fatalf("check unknown account: %v", err)
	}
	if ok {
		t.Fatalf("expected denial for unknown account without application grant")
	}
}

func TestEmptyUserIsAlwaysDenied(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertAccount(t, db, 10, 1)

	svc := newTestService(t, db)

	ok, err := svc.CheckAccountAccess(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("check account: %v", err)
	}
	if ok {
		t.Fatalf("expected the empty user sentinel to be denied")
	}
	if got := countDenials(t, db); got != 1 {
		t.Fatalf("expected 1 recorded denial, got %d", got)
	}
}

func newTestService(t *testing.T, db *gorm.DB) *ServiceImpl {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
	})
	return &ServiceImpl{
		db:          db,
		log:         zap.NewNop(),
		tenantRepo:  tenantrepository.Provide(),
		memberships: membershiprepository.Provide(),
		auditSvc:    auditSvc,
	}
}

func TestAccountTenantMappingIsCached(t *testing.T) {
	db := setupAccessTestDB(t)
	insertTenant(t, db, 1)
	insertAccount(t, db, 10, 1)
	insertTenantUser(t, db, 100, 1)

	svc := newTestService(t, db)
	svc.accountTenants = cache.NewTTLCache[snowflake.ID, snowflake.ID]()

	ok, err := svc.CheckAccountAccess(context.Background(), 100, 10)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if !ok {
		t.Fatal("expected tenant grant to allow the owned account")
	}

	// The ownership row is gone but the mapping is still cached, so the
	// tenant grant keeps matching until the TTL lapses.
	if err := db.Exec(`DELETE FROM accounts WHERE id = 10`).Error; err != nil {
		t.Fatalf("delete account: %v", err)
	}
	ok, err = svc.CheckAccountAccess(context.Background(), 100, 10)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !ok {
		t.Fatal("expected cached mapping to keep the grant effective")
	}
}

func setupAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			address TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS application_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id BIGINT NOT NULL UNIQUE,
			granted_by BIGINT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tenant_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id BIGINT NOT NULL,
			tenant_id BIGINT NOT NULL,
			granted_by BIGINT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, tenant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS account_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id BIGINT NOT NULL,
			account_id BIGINT NOT NULL,
			granted_by BIGINT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY,
			tenant_id BIGINT,
			actor_type TEXT NOT NULL,
			actor_id TEXT,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func insertTenant(t *testing.T, db *gorm.DB, id int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO tenants (id, name, slug) VALUES (?, ?, ?)`,
		id,
		fmt.Sprintf("Tenant %d", id),
		fmt.Sprintf("tenant-%d", id),
	).Error; err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
}

func insertAccount(t *testing.T, db *gorm.DB, id, tenantID int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO accounts (id, tenant_id, name) VALUES (?, ?, ?)`,
		id,
		tenantID,
		fmt.Sprintf("Account %d", id),
	).Error; err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

func insertApplicationUser(t *testing.T, db *gorm.DB, userID int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO application_users (user_id) VALUES (?)`,
		userID,
	).Error; err != nil {
		t.Fatalf("insert application user: %v", err)
	}
}

func insertTenantUser(t *testing.T, db *gorm.DB, userID, tenantID int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO tenant_users (user_id, tenant_id) VALUES (?, ?)`,
		userID,
		tenantID,
	).Error; err != nil {
		t.Fatalf("insert tenant user: %v", err)
	}
}

func insertAccountUser(t *testing.T, db *gorm.DB, userID, accountID int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO account_users (user_id, account_id) VALUES (?, ?)`,
		userID,
		accountID,
	).Error; err != nil {
		t.Fatalf("insert account user: %v", err)
	}
}

func countDenials(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM audit_logs WHERE action = ?`,
		"access.denied",
	).Scan(&count).Error; err != nil {
		t.Fatalf("count denials: %v", err)
	}
	return count
}
