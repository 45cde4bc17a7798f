package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) CheckAccountAccess(c *gin.Context) {
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	allowed, err := s.accessSvc.CheckAccountAccess(c.Request.Context(), s.currentUserID(c), accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

func (s *Server) CheckTenantAccess(c *gin.Context) {
	tenantID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	allowed, err := s.accessSvc.CheckTenantAccess(c.Request.Context(), s.currentUserID(c), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

func (s *Server) CheckApplicationAccess(c *gin.Context) {
	allowed, err := s.accessSvc.CheckApplicationAccess(c.Request.Context(), s.currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

// requireAccountAccess fails closed: a store error aborts with 500, a denial
// aborts with 403.
func (s *Server) requireAccountAccess(c *gin.Context, accountID snowflake.ID) bool {
	allowed, err := s.accessSvc.CheckAccountAccess(c.Request.Context(), s.currentUserID(c), accountID)
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return false
	}
	return true
}
