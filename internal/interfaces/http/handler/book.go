package handler

import (
	"github.com/gin-gonic/gin"

	lendingapp "github.com/bookloop/backend/internal/application/lending"
)

// BookHandler handles book listing and borrowing endpoints
type BookHandler struct {
	BaseHandler
	engine *lendingapp.EngineService
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(engine *lendingapp.EngineService) *BookHandler {
	return &BookHandler{engine: engine}
}

// RegisterRoutes registers all book routes
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	books := rg.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBook)
		books.GET("/:id/loan", h.GetActiveLoan)
		books.POST("", h.ListBook)
		books.POST("/:id/borrow", h.BorrowBook)
	}
}

// ListBook handles POST /books
func (h *BookHandler) ListBook(c *gin.Context) {
	var req lendingapp.ListBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	book, err := h.engine.ListBook(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, book)
}

// GetBook handles GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid book id")
		return
	}

	book, err := h.engine.GetBook(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, book)
}

// GetActiveLoan handles GET /books/:id/loan
func (h *BookHandler) GetActiveLoan(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid book id")
		return
	}

	loan, err := h.engine.GetActiveLoan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loan)
}

// ListBooks handles GET /books
func (h *BookHandler) ListBooks(c *gin.Context) {
	var filter lendingapp.BookListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	books, total, err := h.engine.ListBooks(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pagination := filter.Pagination()
	h.SuccessWithMeta(c, books, total, pagination.Page, pagination.PageSize)
}

// BorrowBook handles POST /books/:id/borrow
func (h *BookHandler) BorrowBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid book id")
		return
	}

	var req lendingapp.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	loan, err := h.engine.BorrowBook(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loan)
}
