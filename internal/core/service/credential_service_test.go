package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/corehr/identity-service/internal/core/domain"
)

// stubUserRepo is an in-memory UserRepository shared by the service tests.
type stubUserRepo struct {
	byEmail map[string]*domain.CredentialView
	byID    map[string]*domain.CredentialView

	created       []*domain.NewUser
	createErr     error
	findErr       error
	updateCalls   int
	updateChanged bool
	updateErr     error
}

func newStubUserRepo(users ...*domain.CredentialView) *stubUserRepo {
	r := &stubUserRepo{
		byEmail:       make(map[string]*domain.CredentialView),
		byID:          make(map[string]*domain.CredentialView),
		updateChanged: true,
	}
	for _, u := range users {
		r.byEmail[u.Email] = u
		r.byID[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.CredentialView, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string, role domain.Role) (domain.UserView, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	full := u.FullView
	return full.ForRole(role), nil
}

func (r *stubUserRepo) FindAll(_ context.Context, role domain.Role) ([]domain.UserView, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var views []domain.UserView
	for _, u := range r.byID {
		if !u.IsActive {
			continue
		}
		full := u.FullView
		views = append(views, full.ForRole(role))
	}
	return views, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.NewUser) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return "", domain.ErrEmailTaken
	}
	r.created = append(r.created, user)
	return "u-new", nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, _ domain.ProfileUpdate) (bool, error) {
	r.updateCalls++
	if r.updateErr != nil {
		return false, r.updateErr
	}
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	return r.updateChanged, nil
}

func (r *stubUserRepo) UpdateSensitive(_ context.Context, id string, _ domain.SensitiveUpdate) (bool, error) {
	r.updateCalls++
	if r.updateErr != nil {
		return false, r.updateErr
	}
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	return r.updateChanged, nil
}

// stubThrottle is a scriptable LoginThrottle.
type stubThrottle struct {
	blocked    bool
	checkErr   error
	failures   []string
	resets     []string
	recordErr  error
	checkCalls int
}

func (t *stubThrottle) TooManyFailures(_ context.Context, _ string) (bool, error) {
	t.checkCalls++
	return t.blocked, t.checkErr
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures = append(t.failures, email)
	return t.recordErr
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	t.resets = append(t.resets, email)
	return nil
}

func testCredential(t *testing.T, id, email string, role domain.Role, active bool, password string) *domain.CredentialView {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	salary := 50000.0
	nid := "123-45-6789"
	return &domain.CredentialView{
		FullView: domain.FullView{
			BaseView: domain.BaseView{
				ID:        id,
				Email:     email,
				Name:      "Test User",
				Role:      role,
				IsActive:  active,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Sensitive: domain.SensitiveData{Salary: &salary, NationalID: &nid},
		},
		PasswordHash: string(hash),
	}
}

func testTokenConfig() TokenConfig {
	return TokenConfig{Secret: "secret", TTL: time.Hour}
}

func TestNewCredentialService_RequiresConfig(t *testing.T) {
	repo := newStubUserRepo()
	if _, err := NewCredentialService(repo, nil, TokenConfig{TTL: time.Hour}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing secret")
	}
	if _, err := NewCredentialService(repo, nil, TokenConfig{Secret: "s"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestCredentialService_Login_Success(t *testing.T) {
	repo := newStubUserRepo(testCredential(t, "u1", "carol@example.com", domain.RoleAdmin, true, "s3cret-pass"))
	throttle := &stubThrottle{}
	svc, err := NewCredentialService(repo, throttle, testTokenConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}

	token, err := svc.Login(context.Background(), "carol@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != "u1" || claims["email"] != "carol@example.com" || claims["role"] != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected expiry claim")
	}

	if len(throttle.resets) != 1 || throttle.resets[0] != "carol@example.com" {
		t.Fatalf("expected throttle reset on success, got %v", throttle.resets)
	}
}

func TestCredentialService_Login_FailureCategories(t *testing.T) {
	repo := newStubUserRepo(
		testCredential(t, "u1", "active@example.com", domain.RoleUser, true, "rightpass"),
		testCredential(t, "u2", "inactive@example.com", domain.RoleUser, false, "rightpass"),
	)
	svc, err := NewCredentialService(repo, nil, testTokenConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}

	if _, err := svc.Login(context.Background(), "active@example.com", "wrongpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "whatever"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty credentials: expected ErrInvalidCredentials, got %v", err)
	}
	// Distinguished internally; the transport normalizes it to the same
	// generic 401 as ErrInvalidCredentials.
	if _, err := svc.Login(context.Background(), "inactive@example.com", "rightpass"); !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("inactive account: expected ErrAccountInactive, got %v", err)
	}
}

func TestCredentialService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo(testCredential(t, "u1", "a@example.com", domain.RoleUser, true, "rightpass"))
	throttle := &stubThrottle{blocked: true}
	svc, _ := NewCredentialService(repo, throttle, testTokenConfig(), zerolog.Nop())

	if _, err := svc.Login(context.Background(), "a@example.com", "rightpass"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestCredentialService_Login_ThrottleOutageDegradesOpen(t *testing.T) {
	repo := newStubUserRepo(testCredential(t, "u1", "a@example.com", domain.RoleUser, true, "rightpass"))
	throttle := &stubThrottle{checkErr: errors.New("redis down")}
	svc, _ := NewCredentialService(repo, throttle, testTokenConfig(), zerolog.Nop())

	if _, err := svc.Login(context.Background(), "a@example.com", "rightpass"); err != nil {
		t.Fatalf("throttle outage should not block login: %v", err)
	}
}

func TestCredentialService_Login_RecordsFailure(t *testing.T) {
	repo := newStubUserRepo(testCredential(t, "u1", "a@example.com", domain.RoleUser, true, "rightpass"))
	throttle := &stubThrottle{}
	svc, _ := NewCredentialService(repo, throttle, testTokenConfig(), zerolog.Nop())

	_, _ = svc.Login(context.Background(), "a@example.com", "wrongpass")
	if len(throttle.failures) != 1 {
		t.Fatalf("expected one recorded failure, got %d", len(throttle.failures))
	}
}

func TestCredentialService_Login_DatabaseErrorPassesThrough(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = &domain.DatabaseError{Op: "find_by_email", Cause: errors.New("connection reset")}
	svc, _ := NewCredentialService(repo, nil, testTokenConfig(), zerolog.Nop())

	_, err := svc.Login(context.Background(), "a@example.com", "pass")
	var dberr *domain.DatabaseError
	if !errors.As(err, &dberr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}
}

func TestCredentialService_Register(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := NewCredentialService(repo, nil, testTokenConfig(), zerolog.Nop())
	admin := domain.AuthorizationContext{UserID: "admin1", Role: domain.RoleAdmin}
	user := domain.AuthorizationContext{UserID: "u1", Role: domain.RoleUser}

	payload := map[string]any{
		"email":    "new@example.com",
		"name":     "New Person",
		"password": "longenough",
		"role":     "user",
	}

	if _, err := svc.Register(context.Background(), payload, user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-admin register: expected ErrForbidden, got %v", err)
	}

	id, err := svc.Register(context.Background(), payload, admin)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if id == "" {
		t.Fatalf("expected id")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created user")
	}
	created := repo.created[0]
	if created.PasswordHash == "longenough" {
		t.Fatalf("password stored unhashed")
	}
	if !VerifyPassword("longenough", created.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}

	bad := map[string]any{"email": "x", "name": "", "password": "short", "role": "boss"}
	_, err = svc.Register(context.Background(), bad, admin)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) < 4 {
		t.Fatalf("expected all violations enumerated, got %v", verr.Violations)
	}
}

func TestVerifyPassword_NeverErrors(t *testing.T) {
	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must compare false")
	}
	if VerifyPassword("", "") {
		t.Fatalf("empty hash must compare false")
	}
}
