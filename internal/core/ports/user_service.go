package ports

import (
	"context"

	"github.com/corehr/identity-service/internal/core/domain"
)

// UserService enforces the business-level access rules on top of an already
// resolved AuthorizationContext. The context is passed in explicitly; the
// service never pulls caller identity from ambient state.
type UserService interface {
	// GetUser returns the projection selected by the caller's role. A
	// user-role caller may only fetch their own record.
	GetUser(ctx context.Context, targetID string, authCtx domain.AuthorizationContext) (domain.UserView, error)
	// ListUsers returns all active users projected uniformly by the
	// caller's role.
	ListUsers(ctx context.Context, authCtx domain.AuthorizationContext) ([]domain.UserView, error)
	// UpdateProfile validates and applies a profile patch. Returns false
	// without touching storage when the patch is empty.
	UpdateProfile(ctx context.Context, targetID string, raw map[string]any, authCtx domain.AuthorizationContext) (bool, error)
	// UpdateSensitiveData validates and applies a sensitive-data patch.
	// Requires an admin caller regardless of target.
	UpdateSensitiveData(ctx context.Context, targetID string, raw map[string]any, authCtx domain.AuthorizationContext) (bool, error)
}
