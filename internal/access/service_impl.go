package access

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/fakturalabs/faktura/internal/audit/domain"
	"github.com/fakturalabs/faktura/internal/cache"
	membershipdomain "github.com/fakturalabs/faktura/internal/membership/domain"
	tenantdomain "github.com/fakturalabs/faktura/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// accountTenantTTL bounds how stale a cached account-to-tenant mapping may
// be. Ownership changes are rare; grants are never cached.
const accountTenantTTL = 30 * time.Second

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	TenantRepo   tenantdomain.Repository
	Memberships  membershipdomain.Store
	AuditSvc     auditdomain.Service                         `optional:"true"`
	AccountCache *cache.TTLCache[snowflake.ID, snowflake.ID] `optional:"true"`
}

type ServiceImpl struct {
	db             *gorm.DB
	log            *zap.Logger
	tenantRepo     tenantdomain.Repository
	memberships    membershipdomain.Store
	auditSvc       auditdomain.Service
	accountTenants *cache.TTLCache[snowflake.ID, snowflake.ID]
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:             p.DB,
		log:            p.Log.Named("access.service"),
		tenantRepo:     p.TenantRepo,
		memberships:    p.Memberships,
		auditSvc:       p.AuditSvc,
		accountTenants: p.AccountCache,
	}
}

// CheckAccountAccess grants when the user holds an account grant for the
// account, a tenant grant for its owning tenant, or an application grant.
// An unknown account is not an error here: narrower grants cannot match, so
// the check degrades to the application level.
func (s *ServiceImpl) CheckAccountAccess(ctx context.Context, userID, accountID snowflake.ID) (bool, error) {
	if userID == 0 {
		s.recordDenial(ctx, userID, ScopeAccount, accountID)
		return false, nil
	}

	tenantID, known, err := s.accountTenant(ctx, accountID)
	if err != nil {
		return false, err
	}
	if known {
		ok, err := s.memberships.HasAccountMembership(ctx, s.db, userID, accountID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		ok, err = s.memberships.HasTenantMembership(ctx, s.db, userID, tenantID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	ok, err := s.memberships.HasApplicationMembership(ctx, s.db, userID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	s.recordDenial(ctx, userID, ScopeAccount, accountID)
	return false, nil
}

// CheckTenantAccess grants when the user holds a tenant grant for the tenant
// or an application grant. An unknown tenant degrades to the application
// check the same way an unknown account does.
func (s *ServiceImpl) CheckTenantAccess(ctx context.Context, userID, tenantID snowflake.ID) (bool, error) {
	if userID == 0 {
		s.recordDenial(ctx, userID, ScopeTenant, tenantID)
		return false, nil
	}

	tenant, err := s.tenantRepo.FindTenantByID(ctx, s.db, tenantID)
	if err != nil {
		return false, err
	}
	if tenant != nil {
		ok, err := s.memberships.HasTenantMembership(ctx, s.db, userID, tenantID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	ok, err := s.memberships.HasApplicationMembership(ctx, s.db, userID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	s.recordDenial(ctx, userID, ScopeTenant, tenantID)
	return false, nil
}

// CheckApplicationAccess is the terminal check: only an explicit application
// grant passes.
func (s *ServiceImpl) CheckApplicationAccess(ctx context.Context, userID snowflake.ID) (bool, error) {
	if userID == 0 {
		s.recordDenial(ctx, userID, ScopeApplication, 0)
		return false, nil
	}

	ok, err := s.memberships.HasApplicationMembership(ctx, s.db, userID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	s.recordDenial(ctx, userID, ScopeApplication, 0)
	return false, nil
}

// accountTenant resolves the owning tenant of an account, through the TTL
// cache when one is wired. Only positive lookups are cached so a freshly
// created account is visible immediately.
func (s *ServiceImpl) accountTenant(ctx context.Context, accountID snowflake.ID) (snowflake.ID, bool, error) {
	if tenantID, ok := s.accountTenants.Get(accountID); ok {
		return tenantID, true, nil
	}

	account, err := s.tenantRepo.FindAccountByID(ctx, s.db, accountID)
	if err != nil {
		return 0, false, err
	}
	if account == nil {
		return 0, false, nil
	}
	s.accountTenants.Set(accountID, account.TenantID, accountTenantTTL)
	return account.TenantID, true, nil
}

// recordDenial writes the auditable denial event. A failed audit write never
// changes the decision; it is logged and dropped.
func (s *ServiceImpl) recordDenial(ctx context.Context, userID snowflake.ID, scope ScopeKind, scopeID snowflake.ID) {
	s.log.Info("access denied",
		zap.String("user_id", userID.String()),
		zap.String("scope", string(scope)),
		zap.String("scope_id", scopeID.String()),
	)

	if s.auditSvc == nil {
		return
	}

	actorID := userID.String()
	var targetID *string
	if scopeID != 0 {
		value := scopeID.String()
		targetID = &value
	}
	entry := &auditdomain.AuditLog{
		ActorType:  string(auditdomain.ActorTypeUser),
		ActorID:    &actorID,
		Action:     auditdomain.ActionAccessDenied,
		TargetType: targetTypeFor(scope),
		TargetID:   targetID,
		Metadata: datatypes.JSONMap{
			"user_id": strconv.FormatInt(int64(userID), 10),
			"scope":   string(scope),
		},
	}
	if err := s.auditSvc.Record(ctx, entry); err != nil {
		s.log.Warn("failed to record access denial",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func targetTypeFor(scope ScopeKind) string {
	switch scope {
	case ScopeAccount:
		return auditdomain.TargetTypeAccount
	case ScopeTenant:
		return auditdomain.TargetTypeTenant
	default:
		return auditdomain.TargetTypeApplication
	}
}
