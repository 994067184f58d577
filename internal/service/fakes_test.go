package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
	"github.com/crte-ams/ticket-service/internal/notify"
)

var errStoreDown = errors.New("connection refused")

// fakeTickets is an in-memory TicketRepository mirroring the SQL semantics of repository.TicketRepo.
type fakeTickets struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]model.Ticket
	seq     int64
	writes  int
	failAll error
	// beforeAssign runs inside AssignIfAvailable before the condition is checked.
	beforeAssign func(t *model.Ticket)
}

func newFakeTickets(items ...model.Ticket) *fakeTickets {
	f := &fakeTickets{rows: map[uuid.UUID]model.Ticket{}}
	for _, t := range items {
		f.seq++
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.TicketNumber == 0 {
			t.TicketNumber = f.seq
		}
		f.rows[t.ID] = t
	}
	return f
}

func (f *fakeTickets) get(id uuid.UUID) model.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeTickets) Create(_ context.Context, t *model.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.seq++
	t.TicketNumber = f.seq
	f.rows[t.ID] = *t
	f.writes++
	return nil
}

func (f *fakeTickets) GetByID(_ context.Context, id uuid.UUID) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	t, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrTicketNotFound
	}
	return &t, nil
}

func (f *fakeTickets) list(match func(model.Ticket) bool) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []model.Ticket
	for _, t := range f.rows {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTickets) ListForOwner(_ context.Context, ownerID string) ([]model.Ticket, error) {
	return f.list(func(t model.Ticket) bool { return t.OwnerID == ownerID })
}

func (f *fakeTickets) ListAll(_ context.Context, status model.TicketStatus) ([]model.Ticket, error) {
	return f.list(func(t model.Ticket) bool { return status == "" || t.Status == status })
}

func (f *fakeTickets) Update(_ context.Context, id uuid.UUID, changes map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	t, ok := f.rows[id]
	if !ok {
		return errs.ErrTicketNotFound
	}
	for k, v := range changes {
		switch k {
		case "status":
			t.Status = model.TicketStatus(v.(string))
		case "tecnico_responsavel":
			t.TecnicoResponsavel = v.(*string)
		case "os_celepar":
			t.OSCelepar = v.(*string)
		}
	}
	f.rows[id] = t
	f.writes++
	return nil
}

func (f *fakeTickets) AssignIfAvailable(_ context.Context, id uuid.UUID, technician string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return false, f.failAll
	}
	t, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if f.beforeAssign != nil {
		f.beforeAssign(&t)
		f.rows[id] = t
	}
	if t.Status.Closed() || (t.Technician() != "" && t.Technician() != technician) {
		return false, nil
	}
	t.TecnicoResponsavel = &technician
	t.Status = model.TicketStatusInProgress
	f.rows[id] = t
	f.writes++
	return true, nil
}

func (f *fakeTickets) CancelIfActive(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return false, f.failAll
	}
	t, ok := f.rows[id]
	if !ok || t.Status == model.TicketStatusCancelled {
		return false, nil
	}
	t.Status = model.TicketStatusCancelled
	f.rows[id] = t
	f.writes++
	return true, nil
}

func (f *fakeTickets) ListByTechnician(_ context.Context, technician string, statuses ...model.TicketStatus) ([]model.Ticket, error) {
	return f.list(func(t model.Ticket) bool {
		if t.Technician() != technician {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if t.Status == s {
				return true
			}
		}
		return false
	})
}

func (f *fakeTickets) ListByTechnicianSince(_ context.Context, technician string, since time.Time) ([]model.Ticket, error) {
	return f.list(func(t model.Ticket) bool {
		return t.Technician() == technician && !t.CreatedAt.Before(since)
	})
}

func (f *fakeTickets) TechnicianNames(_ context.Context) ([]string, error) {
	items, err := f.list(func(t model.Ticket) bool { return t.Technician() != "" })
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, t := range items {
		if !seen[t.Technician()] {
			seen[t.Technician()] = true
			names = append(names, t.Technician())
		}
	}
	sort.Strings(names)
	return names, nil
}

type fakeProfiles struct {
	mu      sync.Mutex
	rows    map[string]model.Profile
	failGet error
}

func newFakeProfiles(items ...model.Profile) *fakeProfiles {
	f := &fakeProfiles{rows: map[string]model.Profile{}}
	for _, p := range items {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) Upsert(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[p.ID]
	if ok {
		cur.Email, cur.FullName, cur.UpdatedAt = p.Email, p.FullName, p.UpdatedAt
		f.rows[p.ID] = cur
		return nil
	}
	f.rows[p.ID] = model.Profile{ID: p.ID, Email: p.Email, FullName: p.FullName, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrProfileNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) List(_ context.Context) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Profile, 0, len(f.rows))
	for _, p := range f.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeProfiles) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return errs.ErrProfileNotFound
	}
	p.IsAdmin = isAdmin
	f.rows[id] = p
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Email
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, e notify.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, e)
	return n.err
}

func (n *recordingNotifier) emails() []notify.Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Email(nil), n.sent...)
}

type recordingProducer struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingProducer) ProduceTicketEvent(_ context.Context, event string, _ map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingProducer) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func strPtr(s string) *string { return &s }
