// Package identity extracts a caller identity from externally-issued
// credential claims. Token issuance and verification happen upstream; this
// package only reads the already-verified claims object.
package identity

import (
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// Claim keys checked for the user identifier, in order.
var userIDClaims = []string{"sub", "user_id"}

// Resolver turns a claims object into a user id. It fails soft: malformed or
// missing identity yields the zero id, which matches no membership and is
// denied by every access check.
type Resolver struct {
	log *zap.Logger
}

func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{log: log.Named("identity.resolver")}
}

// ResolveUserID returns the user id carried by the principal, or zero when
// the principal is absent, lacks an identifier claim, or carries one that
// does not parse. It never returns an error.
func (r *Resolver) ResolveUserID(principal map[string]any) snowflake.ID {
	if principal == nil {
		r.warn("missing principal")
		return 0
	}

	for _, claim := range userIDClaims {
		raw, ok := principal[claim]
		if !ok {
			continue
		}
		userID, ok := parseUserID(raw)
		if !ok {
			r.warn("malformed identity claim", zap.String("claim", claim))
			return 0
		}
		return userID
	}

	r.warn("principal lacks identifier claim")
	return 0
}

func parseUserID(raw any) (snowflake.ID, bool) {
	switch value := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, false
		}
		userID, err := snowflake.ParseString(trimmed)
		if err != nil {
			return 0, false
		}
		return userID, true
	case json.Number:
		parsed, err := value.Int64()
		if err != nil || parsed <= 0 {
			return 0, false
		}
		return snowflake.ID(parsed), true
	case float64:
		if value <= 0 || value != float64(int64(value)) {
			return 0, false
		}
		return snowflake.ID(int64(value)), true
	case int64:
		if value <= 0 {
			return 0, false
		}
		return snowflake.ID(value), true
	default:
		return 0, false
	}
}

func (r *Resolver) warn(msg string, fields ...zap.Field) {
	if r.log == nil {
		return
	}
	r.log.Warn(msg, fields...)
}
