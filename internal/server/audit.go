package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	auditdomain "github.com/fakturalabs/faktura/internal/audit/domain"
	"github.com/gin-gonic/gin"
)

// ListAuditLogs exposes the audit trail to application-scope callers.
func (s *Server) ListAuditLogs(c *gin.Context) {
	allowed, err := s.accessSvc.CheckApplicationAccess(c.Request.Context(), s.currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return
	}

	filter, err := parseAuditFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func parseAuditFilter(c *gin.Context) (auditdomain.ListFilter, error) {
	filter := auditdomain.ListFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   strings.TrimSpace(c.Query("target_id")),
		ActorType:  strings.TrimSpace(c.Query("actor_type")),
	}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return auditdomain.ListFilter{}, newValidationError("start", "invalid_time", "invalid start time")
		}
		filter.StartAt = &start
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return auditdomain.ListFilter{}, newValidationError("end", "invalid_time", "invalid end time")
		}
		filter.EndAt = &end
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return auditdomain.ListFilter{}, newValidationError("limit", "invalid_limit", "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
