package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListTenants(c *gin.Context) {
	allowed, err := s.accessSvc.CheckApplicationAccess(c.Request.Context(), s.currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return
	}

	tenants, err := s.tenantRepo.ListTenants(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tenants})
}

func (s *Server) GetTenant(c *gin.Context) {
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
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return
	}

	tenant, err := s.tenantRepo.FindTenantByID(c.Request.Context(), s.db, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if tenant == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (s *Server) ListTenantAccounts(c *gin.Context) {
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
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return
	}

	accounts, err := s.tenantRepo.ListAccountsByTenant(c.Request.Context(), s.db, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

func (s *Server) GetAccount(c *gin.Context) {
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.requireAccountAccess(c, accountID) {
		return
	}

	account, err := s.tenantRepo.FindAccountByID(c.Request.Context(), s.db, accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if account == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, account)
}
