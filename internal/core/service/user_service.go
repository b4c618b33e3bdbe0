package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/corehr/identity-service/internal/core/domain"
	"github.com/corehr/identity-service/internal/core/ports"
)

// UserService enforces the access rules on top of a resolved
// AuthorizationContext and delegates persistence to the repository.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// GetUser fetches a single user. A user-role caller may only fetch their own
// record; the projection is selected by the caller's role, not by who the
// target is.
func (s *UserService) GetUser(ctx context.Context, targetID string, authCtx domain.AuthorizationContext) (domain.UserView, error) {
	if !authCtx.Role.IsAdmin() && authCtx.UserID != targetID {
		return nil, fmt.Errorf("%w: users may only view their own profile", domain.ErrForbidden)
	}
	return s.repo.FindByID(ctx, targetID, authCtx.Role)
}

// ListUsers returns every active user, projected uniformly by the caller's
// role. No per-row ownership filter is applied: any authenticated caller sees
// all active users' base records, admins see full records.
func (s *UserService) ListUsers(ctx context.Context, authCtx domain.AuthorizationContext) ([]domain.UserView, error) {
	return s.repo.FindAll(ctx, authCtx.Role)
}

// UpdateProfile validates and applies a profile patch. Users may update only
// themselves; admins may update anyone, acting on a user's behalf. An empty
// patch returns false without a storage call.
func (s *UserService) UpdateProfile(ctx context.Context, targetID string, raw map[string]any, authCtx domain.AuthorizationContext) (bool, error) {
	if !authCtx.Role.IsAdmin() && authCtx.UserID != targetID {
		return false, fmt.Errorf("%w: users may only update their own profile", domain.ErrForbidden)
	}

	patch, err := domain.DecodeProfileUpdate(raw)
	if err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		return false, nil
	}

	changed, err := s.repo.UpdateProfile(ctx, targetID, *patch)
	if err != nil {
		return false, err
	}
	if changed {
		s.audit(authCtx, "profile.update", targetID)
	}
	return changed, nil
}

// UpdateSensitiveData validates and applies a sensitive-data patch. Admin
// only, regardless of target: a user-role caller is forbidden even on their
// own record.
func (s *UserService) UpdateSensitiveData(ctx context.Context, targetID string, raw map[string]any, authCtx domain.AuthorizationContext) (bool, error) {
	if !authCtx.Role.IsAdmin() {
		return false, fmt.Errorf("%w: admin access required", domain.ErrForbidden)
	}

	patch, err := domain.DecodeSensitiveUpdate(raw)
	if err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		return false, nil
	}

	changed, err := s.repo.UpdateSensitive(ctx, targetID, *patch)
	if err != nil {
		return false, err
	}
	if changed {
		s.audit(authCtx, "sensitive.update", targetID)
	}
	return changed, nil
}

// audit emits a structured audit entry for a completed mutation. Records go
// to the log stream; there is no separate audit store.
func (s *UserService) audit(authCtx domain.AuthorizationContext, action, targetID string) {
	rec := domain.AuditRecord{
		ActorID:    authCtx.UserID,
		ActorRole:  authCtx.Role,
		Action:     action,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	}
	s.log.Info().Interface("audit", rec).Msg(action)
}
