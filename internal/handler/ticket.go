package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/middleware"
	"github.com/crte-ams/ticket-service/internal/service"
	"github.com/crte-ams/ticket-service/internal/validation"
)

type TicketHandler struct {
	svc service.TicketServicer
}

func NewTicketHandler(svc service.TicketServicer) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func parseTicketID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.Invalid("id", "identificador inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// Create files a ticket for the caller. Status always starts as aberto.
func (h *TicketHandler) Create(c *gin.Context) {
	var in service.CreateTicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, validation.ToError(err))
		return
	}
	in.OwnerID = middleware.CurrentProfile(c).ID
	in.Solicitante = middleware.CurrentName(c)
	in.Status = ""

	t, err := h.svc.CreateTicket(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TicketHandler) Mine(c *gin.Context) {
	items, err := h.svc.GetTicketsForUser(c.Request.Context(), middleware.CurrentProfile(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": items, "total": len(items)})
}

func (h *TicketHandler) List(c *gin.Context) {
	items, err := h.svc.GetAllTickets(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": items, "total": len(items)})
}

func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := parseTicketID(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := parseTicketID(c)
	if !ok {
		return
	}
	var in service.UpdateTicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, validation.ToError(err))
		return
	}
	in.ID = id
	t, err := h.svc.UpdateTicket(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Assign gives the ticket to the calling administrator.
func (h *TicketHandler) Assign(c *gin.Context) {
	id, ok := parseTicketID(c)
	if !ok {
		return
	}
	t, err := h.svc.AssignTicketToTechnician(c.Request.Context(), id, middleware.CurrentName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Cancel(c *gin.Context) {
	id, ok := parseTicketID(c)
	if !ok {
		return
	}
	t, err := h.svc.CancelTicket(c.Request.Context(), id, middleware.CurrentName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
