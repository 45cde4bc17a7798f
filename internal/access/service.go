// Package access resolves whether a user may act on an account, a tenant, or
// the application as a whole.
//
// Grants form a three-tier hierarchy: an account grant covers one account, a
// tenant grant covers every account under the tenant, and an application
// grant covers everything. The hierarchy is implicit: broader grants are
// never materialized as narrower membership rows, each check walks upward
// until a grant is found.
package access

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ScopeKind names the resource level an access check targets.
type ScopeKind string

const (
	ScopeAccount     ScopeKind = "account"
	ScopeTenant      ScopeKind = "tenant"
	ScopeApplication ScopeKind = "application"
)

// Service answers access checks. A false result with a nil error is a
// definitive denial; an error means the underlying store failed and callers
// must fail closed.
type Service interface {
	CheckAccountAccess(ctx context.Context, userID, accountID snowflake.ID) (bool, error)
	CheckTenantAccess(ctx context.Context, userID, tenantID snowflake.ID) (bool, error)
	CheckApplicationAccess(ctx context.Context, userID snowflake.ID) (bool, error)
}
