package handler

import (
	"github.com/gin-gonic/gin"

	reputationapp "github.com/bookloop/backend/internal/application/reputation"
)

// ProfileHandler handles reputation profile endpoints
type ProfileHandler struct {
	BaseHandler
	profiles *reputationapp.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles *reputationapp.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes registers all profile routes
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profiles := rg.Group("/profiles")
	{
		profiles.GET("/:address", h.GetProfile)
		profiles.PUT("/:address/username", h.SetUsername)
	}
}

// GetProfile handles GET /profiles/:address
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		h.BadRequest(c, "Address is required")
		return
	}

	profile, err := h.profiles.GetProfile(c.Request.Context(), address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// SetUsername handles PUT /profiles/:address/username
func (h *ProfileHandler) SetUsername(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		h.BadRequest(c, "Address is required")
		return
	}

	var req reputationapp.SetUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	profile, err := h.profiles.SetUsername(c.Request.Context(), address, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
