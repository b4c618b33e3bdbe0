package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/corehr/identity-service/internal/core/domain"
	"github.com/corehr/identity-service/internal/core/ports"
)

// TokenConfig carries the signing secret and expiry. It is built once at
// process start and passed into constructors; request-handling code never
// reads ambient configuration.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// CredentialService verifies email+password credentials and issues signed
// HS256 tokens.
type CredentialService struct {
	repo     ports.UserRepository
	throttle ports.LoginThrottle
	cfg      TokenConfig
	log      zerolog.Logger
}

// NewCredentialService wires the credential service. A missing secret or
// non-positive TTL is a startup misconfiguration, not a per-request error.
func NewCredentialService(repo ports.UserRepository, throttle ports.LoginThrottle, cfg TokenConfig, log zerolog.Logger) (*CredentialService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("credential service: signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("credential service: token ttl must be positive")
	}
	return &CredentialService{repo: repo, throttle: throttle, cfg: cfg, log: log}, nil
}

// Login authenticates an email+password pair and returns a signed token.
// Unknown email and wrong password produce the same ErrInvalidCredentials so
// the response never reveals which part was wrong or whether the account
// exists. Inactive accounts fail with ErrAccountInactive internally; the
// transport layer normalizes both to one generic message.
func (s *CredentialService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.TooManyFailures(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, proceeding")
		} else if blocked {
			return "", domain.ErrTooManyAttempts
		}
	}

	cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !cred.IsActive {
		s.log.Info().Str("user_id", cred.ID).Msg("login rejected for inactive account")
		return "", domain.ErrAccountInactive
	}

	if !VerifyPassword(password, cred.PasswordHash) {
		if s.throttle != nil {
			if err := s.throttle.RecordFailure(ctx, email); err != nil {
				s.log.Warn().Err(err).Msg("failed to record login failure")
			}
		}
		return "", domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	return s.IssueToken(cred.ID, cred.Email, cred.Role)
}

// IssueToken signs a time-bounded token for the given identity. The role
// claim is informational for the holder; authorization always re-derives the
// role from storage.
func (s *CredentialService) IssueToken(userID, email string, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role.String(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.TTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.log.Error().Err(err).Msg("token signing failed")
		return "", domain.ErrInvalidToken
	}
	return signed, nil
}

// Register creates a new account. Only admin callers may register users.
func (s *CredentialService) Register(ctx context.Context, raw map[string]any, authCtx domain.AuthorizationContext) (string, error) {
	if !authCtx.Role.IsAdmin() {
		return "", fmt.Errorf("%w: admin access required", domain.ErrForbidden)
	}

	reg, err := domain.DecodeRegistration(raw)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, &domain.NewUser{
		Email:        reg.Email,
		Name:         reg.Name,
		PasswordHash: string(hash),
		Role:         reg.Role,
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", id).Str("role", reg.Role.String()).Msg("user registered")
	return id, nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// It never fails the caller's flow: a malformed hash or mismatch is false.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
