package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crte-ams/ticket-service/internal/database"
	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
)

// openTestDB needs TICKET_SERVICE_TEST_DSN as a postgres:// URL of a disposable database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TICKET_SERVICE_TEST_DSN")
	if dsn == "" {
		t.Skip("TICKET_SERVICE_TEST_DSN not set")
	}
	ctx := context.Background()
	require.NoError(t, database.MigrateUp(ctx, dsn, zap.NewNop()))
	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Exec("TRUNCATE tickets, profiles").Error)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedProfile(t *testing.T, repo *ProfileRepo, id string) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), &model.Profile{
		ID:       id,
		Email:    model.StringPtr(id + "@crte.pr.gov.br"),
		FullName: model.StringPtr("Perfil " + id),
	}))
}

func newTicket(owner string) *model.Ticket {
	return &model.Ticket{
		OwnerID:     owner,
		Titulo:      model.StringPtr("Sem internet"),
		Tipo:        model.TicketTypeTechnical,
		Setor:       "EJA",
		Description: "Laboratório sem acesso",
		Status:      model.TicketStatusOpen,
		Solicitante: "Perfil " + owner,
		IPMaquina:   model.StringPtr("10.1.1.1"),
	}
}

func TestProfileRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	seedProfile(t, repo, "u1")
	require.NoError(t, repo.SetAdmin(ctx, "u1", true))

	require.NoError(t, repo.Upsert(ctx, &model.Profile{ID: "u1", FullName: model.StringPtr("Novo Nome")}))
	p, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.Equal(t, "Novo Nome", *p.FullName)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)
	assert.ErrorIs(t, repo.SetAdmin(ctx, "nope", true), errs.ErrProfileNotFound)
}

func TestTicketRepo_CreateAndList(t *testing.T) {
	db := openTestDB(t)
	profiles := NewProfileRepo(db)
	repo := NewTicketRepo(db)
	ctx := context.Background()
	seedProfile(t, profiles, "owner")

	first := newTicket("owner")
	require.NoError(t, repo.Create(ctx, first))
	second := newTicket("owner")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Greater(t, second.TicketNumber, first.TicketNumber)

	mine, err := repo.ListForOwner(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, "10.1.1.1", *mine[0].IPMaquina)

	err = repo.Create(ctx, newTicket("ghost"))
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)
}

func TestTicketRepo_ConditionalWrites(t *testing.T) {
	db := openTestDB(t)
	profiles := NewProfileRepo(db)
	repo := NewTicketRepo(db)
	ctx := context.Background()
	seedProfile(t, profiles, "owner")

	tk := newTicket("owner")
	require.NoError(t, repo.Create(ctx, tk))

	ok, err := repo.AssignIfAvailable(ctx, tk.ID, "Ana")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.AssignIfAvailable(ctx, tk.ID, "Bruno")
	require.NoError(t, err)
	assert.False(t, ok, "already assigned to someone else")
	ok, err = repo.AssignIfAvailable(ctx, tk.ID, "Ana")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Technician())
	assert.Equal(t, model.TicketStatusInProgress, got.Status)

	ok, err = repo.CancelIfActive(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.CancelIfActive(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.AssignIfAvailable(ctx, tk.ID, "Ana")
	require.NoError(t, err)
	assert.False(t, ok, "cancelled tickets are closed")

	names, err := repo.TechnicianNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names)

	cancelled, err := repo.ListByTechnician(ctx, "Ana", model.TicketStatusCancelled)
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)
}

func TestTicketRepo_Update(t *testing.T) {
	db := openTestDB(t)
	profiles := NewProfileRepo(db)
	repo := NewTicketRepo(db)
	ctx := context.Background()
	seedProfile(t, profiles, "owner")

	tk := newTicket("owner")
	require.NoError(t, repo.Create(ctx, tk))
	require.NoError(t, repo.Update(ctx, tk.ID, map[string]interface{}{
		"status":     string(model.TicketStatusAwaitingOS),
		"os_celepar": model.StringPtr("OS-77"),
	}))
	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusAwaitingOS, got.Status)
	assert.Equal(t, "OS-77", *got.OSCelepar)

	err = repo.Update(ctx, uuid.New(), map[string]interface{}{"status": "aberto"})
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)

	err = repo.Update(ctx, tk.ID, map[string]interface{}{"status": "fechado"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput, "check constraint")
}
