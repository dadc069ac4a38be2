package handler

import (
	"github.com/gin-gonic/gin"

	lendingapp "github.com/bookloop/backend/internal/application/lending"
)

// AccountHandler handles credit on-ramp and balance endpoints
type AccountHandler struct {
	BaseHandler
	engine *lendingapp.EngineService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(engine *lendingapp.EngineService) *AccountHandler {
	return &AccountHandler{engine: engine}
}

// RegisterRoutes registers all account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("/deposit", h.Deposit)
		accounts.GET("/:address/balance", h.Balance)
	}
}

// Deposit handles POST /accounts/deposit
func (h *AccountHandler) Deposit(c *gin.Context) {
	var req lendingapp.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	balance, err := h.engine.Deposit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Balance handles GET /accounts/:address/balance
func (h *AccountHandler) Balance(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		h.BadRequest(c, "Address is required")
		return
	}

	balance, err := h.engine.Balance(c.Request.Context(), address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
