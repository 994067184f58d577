package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crte-ams/ticket-service/internal/middleware"
	"github.com/crte-ams/ticket-service/internal/service"
	"github.com/crte-ams/ticket-service/internal/validation"
)

type ProfileHandler struct {
	svc service.ProfileServicer
}

func NewProfileHandler(svc service.ProfileServicer) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentProfile(c))
}

func (h *ProfileHandler) List(c *gin.Context) {
	items, err := h.svc.ListProfiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": items, "total": len(items)})
}

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

func (h *ProfileHandler) SetAdmin(c *gin.Context) {
	var req setAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validation.ToError(err))
		return
	}
	actor := middleware.CurrentProfile(c)
	p, err := h.svc.SetAdmin(c.Request.Context(), actor.ID, c.Param("id"), *req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
