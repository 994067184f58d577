package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crte-ams/ticket-service/internal/middleware"
	"github.com/crte-ams/ticket-service/internal/service"
)

type StatsHandler struct {
	svc service.StatsServicer
}

func NewStatsHandler(svc service.StatsServicer) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) Technicians(c *gin.Context) {
	items, err := h.svc.AllTechniciansStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technicians": items})
}

func (h *StatsHandler) Technician(c *gin.Context) {
	h.technician(c, c.Param("name"))
}

func (h *StatsHandler) Monthly(c *gin.Context) {
	h.monthly(c, c.Param("name"))
}

// Me reports the caller's own numbers as a technician.
func (h *StatsHandler) Me(c *gin.Context) {
	h.technician(c, middleware.CurrentName(c))
}

func (h *StatsHandler) MeMonthly(c *gin.Context) {
	h.monthly(c, middleware.CurrentName(c))
}

func (h *StatsHandler) technician(c *gin.Context, name string) {
	st, err := h.svc.TechnicianStats(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StatsHandler) monthly(c *gin.Context, name string) {
	months, err := h.svc.MonthlyStatsForTechnician(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technician_name": name, "months": months})
}
