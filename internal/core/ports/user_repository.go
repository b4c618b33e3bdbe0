package ports

import (
	"context"

	"github.com/corehr/identity-service/internal/core/domain"
)

// UserRepository is the persistence contract for user records. Implementations
// decode rows through the anti-corruption mapper, so a row that fails domain
// validation surfaces as a DatabaseError, never as a half-built view.
type UserRepository interface {
	// FindByID returns the projection selected by role, or ErrUserNotFound.
	FindByID(ctx context.Context, id string, role domain.Role) (domain.UserView, error)
	// FindAll returns all active users, projected by role, in a stable order.
	FindAll(ctx context.Context, role domain.Role) ([]domain.UserView, error)
	// FindByEmail returns the credential projection, or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.CredentialView, error)
	// Create inserts a new user and returns its id. Duplicate emails fail
	// with ErrEmailTaken.
	Create(ctx context.Context, user *domain.NewUser) (string, error)
	// UpdateProfile applies the patch and reports whether a row changed.
	UpdateProfile(ctx context.Context, id string, patch domain.ProfileUpdate) (bool, error)
	// UpdateSensitive applies the patch and reports whether a row changed.
	UpdateSensitive(ctx context.Context, id string, patch domain.SensitiveUpdate) (bool, error)
}
