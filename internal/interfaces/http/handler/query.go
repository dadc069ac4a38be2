package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	queryapp "github.com/bookloop/backend/internal/application/query"
)

// QueryHandler handles leaderboard and statistics endpoints
type QueryHandler struct {
	BaseHandler
	queries *queryapp.Service
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(queries *queryapp.Service) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// RegisterRoutes registers leaderboard and statistics routes
func (h *QueryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	boards := rg.Group("/leaderboards")
	{
		boards.GET("/lenders", h.TopLenders)
		boards.GET("/borrowers", h.TopBorrowers)
	}
	rg.GET("/statistics", h.Statistics)
	rg.GET("/total-books", h.TotalBooks)
	rg.GET("/total-loans", h.TotalLoans)
}

// limitQuery parses the optional limit query parameter. Out-of-range
// values are clamped by the query service, not rejected here.
func limitQuery(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("limit", strconv.Itoa(queryapp.DefaultLeaderboardLimit))
	return strconv.Atoi(raw)
}

// TopLenders handles GET /leaderboards/lenders
func (h *QueryHandler) TopLenders(c *gin.Context) {
	limit, err := limitQuery(c)
	if err != nil {
		h.BadRequest(c, "Invalid limit")
		return
	}

	board, err := h.queries.TopLenders(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}

// TopBorrowers handles GET /leaderboards/borrowers
func (h *QueryHandler) TopBorrowers(c *gin.Context) {
	limit, err := limitQuery(c)
	if err != nil {
		h.BadRequest(c, "Invalid limit")
		return
	}

	board, err := h.queries.TopBorrowers(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}

// Statistics handles GET /statistics
func (h *QueryHandler) Statistics(c *gin.Context) {
	stats, err := h.queries.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// TotalBooks handles GET /total-books
func (h *QueryHandler) TotalBooks(c *gin.Context) {
	total, err := h.queries.TotalBooks(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"total_books": total})
}

// TotalLoans handles GET /total-loans
func (h *QueryHandler) TotalLoans(c *gin.Context) {
	total, err := h.queries.TotalLoans(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"total_loans": total})
}
