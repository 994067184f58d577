package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
)

func TestEnsureProfile_IsIdempotentAndKeepsAdminFlag(t *testing.T) {
	repo := newFakeProfiles()
	svc := NewProfileService(repo, zap.NewNop())
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, "sub-1", "ana@crte.pr.gov.br", "Ana")
	require.NoError(t, err)
	assert.False(t, p.IsAdmin)
	assert.Equal(t, "Ana", p.DisplayName())

	require.NoError(t, svc.OperatorSetAdmin(ctx, "sub-1", true))

	p, err = svc.EnsureProfile(ctx, "sub-1", "ana@crte.pr.gov.br", "Ana Lima")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin, "login sync never resets is_admin")
	assert.Equal(t, "Ana Lima", *p.FullName)

	all, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureProfile_RequiresSubject(t *testing.T) {
	svc := NewProfileService(newFakeProfiles(), zap.NewNop())
	_, err := svc.EnsureProfile(context.Background(), " ", "", "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestSetAdmin(t *testing.T) {
	now := time.Now()
	repo := newFakeProfiles(
		model.Profile{ID: "admin", IsAdmin: true, CreatedAt: now},
		model.Profile{ID: "user", CreatedAt: now.Add(time.Minute)},
	)
	svc := NewProfileService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.SetAdmin(ctx, "user", "admin", false)
	require.ErrorIs(t, err, errs.ErrForbidden)

	p, err := svc.SetAdmin(ctx, "admin", "user", true)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)

	_, err = svc.SetAdmin(ctx, "admin", "missing", true)
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)

	_, err = svc.SetAdmin(ctx, "missing", "user", true)
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)
}
