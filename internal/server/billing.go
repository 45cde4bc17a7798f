package server

import (
	"net/http"
	"strings"
	"time"

	billingdomain "github.com/fakturalabs/faktura/internal/billing/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createScheduleRequest struct {
	Name          string     `json:"name"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	DayDue        int        `json:"day_due"`
	MonthInterval int        `json:"month_interval"`
	BeginAt       time.Time  `json:"begin_at"`
	EndAt         *time.Time `json:"end_at"`
}

func (s *Server) CreateSchedule(c *gin.Context) {
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.requireAccountAccess(c, accountID) {
		return
	}

	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be a decimal string"))
		return
	}

	interval := req.MonthInterval
	if interval == 0 {
		interval = 1
	}

	now := time.Now().UTC()
	schedule := &billingdomain.BillSchedule{
		ID:            s.genID.Generate(),
		AccountID:     accountID,
		Name:          strings.TrimSpace(req.Name),
		Amount:        amount,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		DayDue:        req.DayDue,
		MonthInterval: interval,
		BeginAt:       req.BeginAt.UTC(),
		EndAt:         req.EndAt,
		Enabled:       true,
		CreatedBy:     s.currentUserID(c),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.billing.InsertSchedule(c.Request.Context(), s.db, schedule); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

func (s *Server) ListAccountSchedules(c *gin.Context) {
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.requireAccountAccess(c, accountID) {
		return
	}

	schedules, err := s.billing.ListSchedulesByAccount(c.Request.Context(), s.db, accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

func (s *Server) ListAccountBills(c *gin.Context) {
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !s.requireAccountAccess(c, accountID) {
		return
	}

	bills, err := s.billing.ListBillsByAccount(c.Request.Context(), s.db, accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bills})
}

func (s *Server) GetBill(c *gin.Context) {
	billID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	bill, err := s.billing.FindBillByID(c.Request.Context(), s.db, billID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if bill == nil {
		// Absent bills degrade to the application check so probing ids does
		// not distinguish missing from forbidden for narrow-scope callers.
		allowed, err := s.accessSvc.CheckApplicationAccess(c.Request.Context(), s.currentUserID(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			AbortWithError(c, ErrForbidden)
			return
		}
		AbortWithError(c, ErrNotFound)
		return
	}

	if !s.requireAccountAccess(c, bill.AccountID) {
		return
	}
	c.JSON(http.StatusOK, bill)
}

// RunBillingNow triggers a generation pass outside the cron cadence. Gated on
// application scope and rate limited per caller.
func (s *Server) RunBillingNow(c *gin.Context) {
	userID := s.currentUserID(c)
	allowed, err := s.accessSvc.CheckApplicationAccess(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !allowed {
		AbortWithError(c, ErrForbidden)
		return
	}
	if !s.runLimiter.Allow(userID.String()) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	created, err := s.generator.RunOnce(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}
