package handler

import (
	"github.com/gin-gonic/gin"

	lendingapp "github.com/bookloop/backend/internal/application/lending"
	"github.com/bookloop/backend/internal/domain/shared"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	BaseHandler
	engine *lendingapp.EngineService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(engine *lendingapp.EngineService) *LoanHandler {
	return &LoanHandler{engine: engine}
}

// RegisterRoutes registers all loan routes
func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	loans := rg.Group("/loans")
	{
		loans.GET("", h.ListLoans)
		loans.GET("/:id", h.GetLoan)
		loans.POST("/:id/return", h.ReturnBook)
	}
}

// GetLoan handles GET /loans/:id
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid loan id")
		return
	}

	loan, err := h.engine.GetLoan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loan)
}

// ListLoans handles GET /loans?borrower=...
func (h *LoanHandler) ListLoans(c *gin.Context) {
	borrower := c.Query("borrower")
	if borrower == "" {
		h.BadRequest(c, "borrower query parameter is required")
		return
	}

	var page struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if page.Page > 0 {
		filter.Page = page.Page
	}
	if page.PageSize > 0 {
		filter.PageSize = page.PageSize
	}

	loans, total, err := h.engine.ListLoansByBorrower(c.Request.Context(), borrower, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, loans, total, filter.Page, filter.PageSize)
}

// ReturnBook handles POST /loans/:id/return
func (h *LoanHandler) ReturnBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid loan id")
		return
	}

	var req lendingapp.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	settlement, err := h.engine.ReturnBook(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settlement)
}
