package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
	"github.com/crte-ams/ticket-service/internal/repository"
)

type ProfileServicer interface {
	EnsureProfile(ctx context.Context, id, email, fullName string) (*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	SetAdmin(ctx context.Context, actorID, targetID string, isAdmin bool) (*model.Profile, error)
}

type ProfileService struct {
	profiles repository.ProfileRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewProfileService(profiles repository.ProfileRepository, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, log: log, now: time.Now}
}

// EnsureProfile is the login sync: it upserts id/email/full_name and returns the
// stored row, including the is_admin flag it never writes.
func (s *ProfileService) EnsureProfile(ctx context.Context, id, email, fullName string) (*model.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.ErrUnauthenticated
	}
	now := s.now().UTC()
	p := &model.Profile{
		ID:        id,
		Email:     model.StringPtr(strings.TrimSpace(email)),
		FullName:  model.StringPtr(strings.TrimSpace(fullName)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, errs.Persistence("Não foi possível sincronizar o perfil", err)
	}
	return s.GetProfile(ctx, id)
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar perfil", err)
	}
	return p, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	items, err := s.profiles.List(ctx)
	if err != nil {
		return nil, errs.Persistence("Erro ao buscar usuários", err)
	}
	return items, nil
}

// SetAdmin changes targetID's admin flag on behalf of actorID, who must be an administrator.
func (s *ProfileService) SetAdmin(ctx context.Context, actorID, targetID string, isAdmin bool) (*model.Profile, error) {
	actor, err := s.GetProfile(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, errs.ErrForbidden
	}
	if err := s.OperatorSetAdmin(ctx, targetID, isAdmin); err != nil {
		return nil, err
	}
	s.log.Info("admin flag changed",
		zap.String("actor_id", actorID),
		zap.String("profile_id", targetID),
		zap.Bool("is_admin", isAdmin),
	)
	return s.GetProfile(ctx, targetID)
}

// OperatorSetAdmin skips the actor check; only the CLI calls it.
func (s *ProfileService) OperatorSetAdmin(ctx context.Context, id string, isAdmin bool) error {
	if err := s.profiles.SetAdmin(ctx, id, isAdmin); err != nil {
		return errs.Persistence("Erro ao atualizar perfil", err)
	}
	return nil
}
