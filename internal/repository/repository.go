// Package repository contains the Postgres-backed stores for profiles and
// tickets. Every call reads or writes the database directly; nothing is cached
// in process.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
)

// ProfileRepository persists identity-provider profiles.
type ProfileRepository interface {
	// Upsert inserts the profile or refreshes email/full_name; is_admin is never touched.
	Upsert(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	// List returns every profile, newest first.
	List(ctx context.Context) ([]model.Profile, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

// TicketRepository persists tickets. Lists are newest first and unpaginated.
type TicketRepository interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	ListForOwner(ctx context.Context, ownerID string) ([]model.Ticket, error)
	// ListAll returns every ticket, or only those with the given status when it is non-empty.
	ListAll(ctx context.Context, status model.TicketStatus) ([]model.Ticket, error)
	// Update writes only the given columns.
	Update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error
	// AssignIfAvailable sets the technician and em_atendimento in a single
	// conditional UPDATE. It reports false when the ticket is closed or
	// belongs to someone else at write time.
	AssignIfAvailable(ctx context.Context, id uuid.UUID, technician string) (bool, error)
	// CancelIfActive sets cancelado unless the ticket already is. Reports whether a row changed.
	CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error)

	TechnicianTicketReader
}

// TechnicianTicketReader is the read side used by the statistics aggregator.
type TechnicianTicketReader interface {
	// ListByTechnician filters on tecnico_responsavel and, if given, status.
	ListByTechnician(ctx context.Context, technician string, statuses ...model.TicketStatus) ([]model.Ticket, error)
	ListByTechnicianSince(ctx context.Context, technician string, since time.Time) ([]model.Ticket, error)
	// TechnicianNames returns the distinct non-empty tecnico_responsavel values, sorted.
	TechnicianNames(ctx context.Context) ([]string, error)
}

// Postgres SQLSTATE codes mapped to domain errors.
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return errs.ErrProfileNotFound
	case pgCheckViolation:
		return errs.Invalid(pgErr.ConstraintName, pgErr.Message)
	}
	return err
}

func statusStrings(statuses []model.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
