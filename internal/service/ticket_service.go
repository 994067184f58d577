package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/kafka"
	"github.com/crte-ams/ticket-service/internal/metrics"
	"github.com/crte-ams/ticket-service/internal/model"
	"github.com/crte-ams/ticket-service/internal/notify"
	"github.com/crte-ams/ticket-service/internal/repository"
	"github.com/crte-ams/ticket-service/internal/validation"
)

// TicketServicer is what the HTTP handlers depend on.
type TicketServicer interface {
	CreateTicket(ctx context.Context, in CreateTicketInput) (*model.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	GetTicketsForUser(ctx context.Context, ownerID string) ([]model.Ticket, error)
	GetAllTickets(ctx context.Context, status string) ([]model.Ticket, error)
	UpdateTicket(ctx context.Context, in UpdateTicketInput) (*model.Ticket, error)
	AssignTicketToTechnician(ctx context.Context, id uuid.UUID, technician string) (*model.Ticket, error)
	CancelTicket(ctx context.Context, id uuid.UUID, adminName string) (*model.Ticket, error)
}

// CreateTicketInput is the requester form. Fields that do not apply to Tipo are dropped.
type CreateTicketInput struct {
	OwnerID     string           `json:"-"`
	Solicitante string           `json:"-"`
	Titulo      string           `json:"titulo" binding:"required,max=255"`
	Tipo        model.TicketType `json:"tipo" binding:"required,oneof=pedagogico tecnico"`
	Setor       string           `json:"setor" binding:"required,setor"`
	Description string           `json:"description" binding:"required"`
	CPF         string           `json:"cpf" binding:"required_if=Tipo pedagogico,omitempty,cpf"`
	RG          string           `json:"rg" binding:"required_if=Tipo pedagogico,omitempty,max=32"`
	IPMaquina   string           `json:"ip_maquina" binding:"required_if=Tipo tecnico,omitempty,ip"`
	// Status is coerced to aberto when empty or unknown.
	Status string `json:"-"`
}

// UpdateTicketInput carries a partial update; nil fields are left untouched.
// An empty TecnicoResponsavel or OSCelepar clears the column.
type UpdateTicketInput struct {
	ID                 uuid.UUID `json:"-"`
	Status             *string   `json:"status"`
	TecnicoResponsavel *string   `json:"tecnico_responsavel"`
	OSCelepar          *string   `json:"os_celepar"`
}

type TicketService struct {
	tickets  repository.TicketRepository
	profiles repository.ProfileRepository
	notifier notify.Notifier
	events   kafka.TicketEventProducer
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewTicketService(
	tickets repository.TicketRepository,
	profiles repository.ProfileRepository,
	notifier notify.Notifier,
	events kafka.TicketEventProducer,
	log *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:  tickets,
		profiles: profiles,
		notifier: notifier,
		events:   events,
		validate: validation.New(),
		log:      log,
		now:      time.Now,
	}
}

func (s *TicketService) CreateTicket(ctx context.Context, in CreateTicketInput) (*model.Ticket, error) {
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Setor = strings.TrimSpace(in.Setor)
	in.Description = strings.TrimSpace(in.Description)
	in.CPF = strings.TrimSpace(in.CPF)
	in.RG = strings.TrimSpace(in.RG)
	in.IPMaquina = strings.TrimSpace(in.IPMaquina)
	if err := s.validate.Struct(in); err != nil {
		return nil, validation.ToError(err)
	}
	if in.OwnerID == "" {
		return nil, errs.ErrUnauthenticated
	}

	t := &model.Ticket{
		ID:          uuid.New(),
		OwnerID:     in.OwnerID,
		Titulo:      model.StringPtr(in.Titulo),
		Tipo:        in.Tipo,
		Setor:       in.Setor,
		Description: in.Description,
		Status:      model.CoerceStatus(in.Status),
		Solicitante: in.Solicitante,
		CreatedAt:   s.now().UTC(),
	}
	switch in.Tipo {
	case model.TicketTypePedagogical:
		t.CPF = model.StringPtr(validation.Digits(in.CPF))
		t.RG = model.StringPtr(in.RG)
	case model.TicketTypeTechnical:
		t.IPMaquina = model.StringPtr(in.IPMaquina)
	}

	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, errs.Persistence("Erro ao criar chamado", err)
	}
	metrics.TicketsCreatedTotal.WithLabelValues(string(t.Tipo)).Inc()
	s.publish(kafka.EventTicketCreated, t)
	return t, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar chamado", err)
	}
	return t, nil
}

func (s *TicketService) GetTicketsForUser(ctx context.Context, ownerID string) ([]model.Ticket, error) {
	items, err := s.tickets.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar chamados", err)
	}
	return items, nil
}

// GetAllTickets lists every ticket; a non-empty status narrows the list and must be a known value.
func (s *TicketService) GetAllTickets(ctx context.Context, status string) ([]model.Ticket, error) {
	st := model.TicketStatus(status)
	if st != "" && !st.Valid() {
		return nil, errs.Invalid("status", "status desconhecido")
	}
	items, err := s.tickets.ListAll(ctx, st)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar chamados", err)
	}
	return items, nil
}

// UpdateTicket writes only the supplied fields. os_celepar may only be set when
// the resulting status is aguardando_os. With nothing supplied it performs no write.
func (s *TicketService) UpdateTicket(ctx context.Context, in UpdateTicketInput) (*model.Ticket, error) {
	changes := map[string]interface{}{}
	var newStatus model.TicketStatus
	if in.Status != nil {
		newStatus = model.CoerceStatus(strings.TrimSpace(*in.Status))
		changes["status"] = string(newStatus)
	}
	if in.TecnicoResponsavel != nil {
		changes["tecnico_responsavel"] = model.StringPtr(strings.TrimSpace(*in.TecnicoResponsavel))
	}
	var osRef string
	if in.OSCelepar != nil {
		osRef = strings.TrimSpace(*in.OSCelepar)
		changes["os_celepar"] = model.StringPtr(osRef)
	}
	if len(changes) == 0 {
		return s.GetTicket(ctx, in.ID)
	}

	if osRef != "" && newStatus != model.TicketStatusAwaitingOS {
		if newStatus != "" {
			return nil, errs.ErrOSNotAllowed
		}
		current, err := s.tickets.GetByID(ctx, in.ID)
		if err != nil {
			return nil, errs.Persistence("Erro ao buscar chamado", err)
		}
		if current.Status != model.TicketStatusAwaitingOS {
			return nil, errs.ErrOSNotAllowed
		}
	}

	if err := s.tickets.Update(ctx, in.ID, changes); err != nil {
		return nil, errs.Persistence("Erro ao atualizar chamado", err)
	}
	t, err := s.GetTicket(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	s.publish(kafka.EventTicketUpdated, t)
	return t, nil
}

// AssignTicketToTechnician gives the ticket to technician and moves it to em_atendimento.
// Re-assigning to the current technician is accepted.
func (s *TicketService) AssignTicketToTechnician(ctx context.Context, id uuid.UUID, technician string) (*model.Ticket, error) {
	technician = strings.TrimSpace(technician)
	if technician == "" {
		return nil, errs.Invalid("tecnico_responsavel", "campo obrigatório")
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar dados do chamado", err)
	}
	owner, err := s.lookupOwner(ctx, t.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := checkAssignable(t, technician); err != nil {
		countAssignment(err)
		return nil, err
	}

	ok, err := s.tickets.AssignIfAvailable(ctx, id, technician)
	if err != nil {
		countAssignment(err)
		return nil, errs.Persistence("Erro ao atribuir chamado", err)
	}
	if !ok {
		// Someone changed the row between the read and the conditional write.
		current, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return nil, errs.Persistence("Erro ao buscar dados do chamado", err)
		}
		err = checkAssignable(current, technician)
		if err == nil {
			err = &errs.AssignmentConflictError{Current: current.Technician()}
		}
		countAssignment(err)
		return nil, err
	}

	t.TecnicoResponsavel = &technician
	t.Status = model.TicketStatusInProgress
	countAssignment(nil)

	email, err := notify.AssignmentEmail(notify.AssignmentData{
		TicketNumber: t.TicketNumber,
		UserEmail:    ownerEmail(owner),
		UserName:     ownerName(owner, t),
		Setor:        t.Setor,
		Description:  t.Description,
		Technician:   technician,
		AssignedAt:   s.now(),
	})
	s.deliver(ctx, "assignment", t, email, err)
	s.publish(kafka.EventTicketAssigned, t)
	return t, nil
}

// CancelTicket moves the ticket to cancelado and notifies the owner. A resolved ticket may still be cancelled.
func (s *TicketService) CancelTicket(ctx context.Context, id uuid.UUID, adminName string) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar dados do chamado", err)
	}
	owner, err := s.lookupOwner(ctx, t.OwnerID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TicketStatusCancelled {
		metrics.CancellationsTotal.WithLabelValues("already_cancelled").Inc()
		return nil, errs.ErrAlreadyCancelled
	}

	ok, err := s.tickets.CancelIfActive(ctx, id)
	if err != nil {
		metrics.CancellationsTotal.WithLabelValues("error").Inc()
		return nil, errs.Persistence("Erro ao cancelar chamado", err)
	}
	if !ok {
		metrics.CancellationsTotal.WithLabelValues("already_cancelled").Inc()
		return nil, errs.ErrAlreadyCancelled
	}
	t.Status = model.TicketStatusCancelled
	metrics.CancellationsTotal.WithLabelValues("ok").Inc()

	email, err := notify.CancellationEmail(notify.CancellationData{
		TicketNumber: t.TicketNumber,
		UserEmail:    ownerEmail(owner),
		UserName:     ownerName(owner, t),
		Setor:        t.Setor,
		Description:  t.Description,
		AdminName:    adminName,
		CancelledAt:  s.now(),
	})
	s.deliver(ctx, "cancellation", t, email, err)
	s.publish(kafka.EventTicketCancelled, t)
	return t, nil
}

func checkAssignable(t *model.Ticket, technician string) error {
	if t.Status.Closed() {
		return errs.ErrTicketClosed
	}
	if cur := t.Technician(); cur != "" && cur != technician {
		return &errs.AssignmentConflictError{Current: cur}
	}
	return nil
}

func countAssignment(err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrTicketClosed):
		result = "closed"
	case errors.Is(err, errs.ErrAlreadyAssigned):
		result = "conflict"
	default:
		result = "error"
	}
	metrics.AssignmentsTotal.WithLabelValues(result).Inc()
}

// lookupOwner returns nil when the owner profile no longer exists.
func (s *TicketService) lookupOwner(ctx context.Context, ownerID string) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, ownerID)
	if errors.Is(err, errs.ErrProfileNotFound) {
		s.log.Warn("ticket owner profile missing", zap.String("owner_id", ownerID))
		return nil, nil
	}
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar dados do usuário", err)
	}
	return p, nil
}

func ownerEmail(p *model.Profile) string {
	if p == nil || p.Email == nil {
		return ""
	}
	return *p.Email
}

func ownerName(p *model.Profile, t *model.Ticket) string {
	if p != nil && p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return t.Solicitante
}

// deliver sends a rendered email. Failures are logged and never returned.
func (s *TicketService) deliver(ctx context.Context, kind string, t *model.Ticket, email notify.Email, renderErr error) {
	err := renderErr
	if err == nil {
		err = s.notifier.Send(ctx, email)
	}
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
		s.log.Warn("Erro ao enviar email",
			zap.String("kind", kind),
			zap.String("ticket_id", t.ID.String()),
			zap.Int64("ticket_number", t.TicketNumber),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(kind, "sent").Inc()
}

// publish hands the event to the producer off the request path.
func (s *TicketService) publish(event string, t *model.Ticket) {
	if s.events == nil {
		return
	}
	payload := kafka.TicketPayload(t)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.events.ProduceTicketEvent(ctx, event, payload)
	}()
}
