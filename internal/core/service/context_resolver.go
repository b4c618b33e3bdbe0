package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/corehr/identity-service/internal/core/domain"
	"github.com/corehr/identity-service/internal/core/ports"
)

// ContextResolver turns a bearer token into a trustworthy per-request
// AuthorizationContext. The token only proves possession; identity and role
// are re-derived from a fresh storage read on every call, so a role change
// takes effect before any outstanding token expires.
type ContextResolver struct {
	repo ports.UserRepository
	cfg  TokenConfig
	log  zerolog.Logger
}

func NewContextResolver(repo ports.UserRepository, cfg TokenConfig, log zerolog.Logger) (*ContextResolver, error) {
	if cfg.Secret == "" {
		return nil, errors.New("context resolver: signing secret is required")
	}
	return &ContextResolver{repo: repo, cfg: cfg, log: log}, nil
}

// Resolve validates the token and re-checks the caller against current
// persisted state, failing closed at every step.
func (r *ContextResolver) Resolve(ctx context.Context, token string) (domain.AuthorizationContext, error) {
	if token == "" {
		return domain.AuthorizationContext{}, domain.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(r.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return domain.AuthorizationContext{}, domain.ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return domain.AuthorizationContext{}, domain.ErrInvalidToken
	}

	cred, err := r.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.AuthorizationContext{}, fmt.Errorf("%w: user not found", domain.ErrInvalidToken)
		}
		return domain.AuthorizationContext{}, err
	}

	if !cred.IsActive {
		return domain.AuthorizationContext{}, domain.ErrAccountInactive
	}

	// Role comes from the freshly loaded record, never from the token claim.
	authCtx, err := domain.DecodeAuthContext(map[string]any{
		"user_id": cred.ID,
		"role":    cred.Role.String(),
	})
	if err != nil {
		r.log.Error().Err(err).Str("user_id", cred.ID).Msg("stored record produced invalid auth context")
		return domain.AuthorizationContext{}, fmt.Errorf("%w: invalid auth context", domain.ErrInvalidToken)
	}

	return authCtx, nil
}
