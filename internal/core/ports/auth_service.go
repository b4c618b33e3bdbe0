package ports

import (
	"context"

	"github.com/corehr/identity-service/internal/core/domain"
)

// CredentialService verifies claimed identities and issues signed tokens.
type CredentialService interface {
	// Login verifies email+password and returns a signed token. All
	// credential failures carry the same externally visible category.
	Login(ctx context.Context, email, password string) (string, error)
	// Register creates an account on behalf of an admin caller.
	Register(ctx context.Context, raw map[string]any, authCtx domain.AuthorizationContext) (string, error)
}

// ContextResolver reconstructs the caller's identity from a bearer token,
// re-validating against current persisted state. It runs on every
// authorization-requiring request; results are never cached.
type ContextResolver interface {
	Resolve(ctx context.Context, token string) (domain.AuthorizationContext, error)
}

// LoginThrottle limits repeated credential failures per account. A broken
// throttle store must not take logins down with it; callers treat throttle
// I/O errors as advisory.
type LoginThrottle interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
