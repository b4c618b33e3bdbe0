package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/corehr/identity-service/internal/core/domain"
)

var (
	adminCtx = domain.AuthorizationContext{UserID: "a1", Role: domain.RoleAdmin}
	userCtx  = domain.AuthorizationContext{UserID: "u1", Role: domain.RoleUser}
)

func userServiceFixture(t *testing.T) (*UserService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo(
		testCredential(t, "a1", "admin@example.com", domain.RoleAdmin, true, "adminpass1"),
		testCredential(t, "u1", "one@example.com", domain.RoleUser, true, "userpass11"),
		testCredential(t, "u2", "two@example.com", domain.RoleUser, true, "userpass22"),
	)
	return NewUserService(repo, zerolog.Nop()), repo
}

func TestUserService_GetUser_OwnRecord(t *testing.T) {
	svc, _ := userServiceFixture(t)

	view, err := svc.GetUser(context.Background(), "u1", userCtx)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	base, ok := view.(*domain.BaseView)
	if !ok {
		t.Fatalf("user caller should receive *BaseView, got %T", view)
	}
	if base.ID != "u1" {
		t.Fatalf("unexpected view: %+v", base)
	}
}

func TestUserService_GetUser_CrossUserForbidden(t *testing.T) {
	svc, _ := userServiceFixture(t)

	if _, err := svc.GetUser(context.Background(), "u2", userCtx); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_GetUser_AdminGetsFullViewOfAnyone(t *testing.T) {
	svc, _ := userServiceFixture(t)

	view, err := svc.GetUser(context.Background(), "u2", adminCtx)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	full, ok := view.(*domain.FullView)
	if !ok {
		t.Fatalf("admin caller should receive *FullView, got %T", view)
	}
	if full.Sensitive.Salary == nil {
		t.Fatalf("expected sensitive data in admin view")
	}
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	svc, _ := userServiceFixture(t)

	if _, err := svc.GetUser(context.Background(), "nope", adminCtx); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ListUsers_ViewKindByCallerRole(t *testing.T) {
	svc, _ := userServiceFixture(t)

	// A user-role caller receives all active users' base views; no
	// ownership filter is applied to the listing.
	views, err := svc.ListUsers(context.Background(), userCtx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 active users, got %d", len(views))
	}
	for _, v := range views {
		if _, ok := v.(*domain.BaseView); !ok {
			t.Fatalf("user caller should receive base views, got %T", v)
		}
	}

	adminViews, err := svc.ListUsers(context.Background(), adminCtx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	for _, v := range adminViews {
		if _, ok := v.(*domain.FullView); !ok {
			t.Fatalf("admin caller should receive full views, got %T", v)
		}
	}
}

func TestUserService_UpdateProfile_OwnRecord(t *testing.T) {
	svc, repo := userServiceFixture(t)

	changed, err := svc.UpdateProfile(context.Background(), "u1", map[string]any{"name": "Renamed"}, userCtx)
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected change")
	}
	if repo.updateCalls != 1 {
		t.Fatalf("expected one storage call, got %d", repo.updateCalls)
	}
}

func TestUserService_UpdateProfile_CrossUserForbidden(t *testing.T) {
	svc, repo := userServiceFixture(t)

	if _, err := svc.UpdateProfile(context.Background(), "u2", map[string]any{"name": "X"}, userCtx); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("storage must not be called on authorization failure")
	}
}

func TestUserService_UpdateProfile_AdminUpdatesAnyone(t *testing.T) {
	svc, _ := userServiceFixture(t)

	changed, err := svc.UpdateProfile(context.Background(), "u2", map[string]any{"email": "renamed@example.com"}, adminCtx)
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected change")
	}
}

func TestUserService_UpdateProfile_EmptyPatchSkipsStorage(t *testing.T) {
	svc, repo := userServiceFixture(t)

	changed, err := svc.UpdateProfile(context.Background(), "u1", map[string]any{}, userCtx)
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if changed {
		t.Fatalf("empty patch must report false")
	}
	if repo.updateCalls != 0 {
		t.Fatalf("empty patch must not reach storage")
	}
}

func TestUserService_UpdateProfile_InvalidPatch(t *testing.T) {
	svc, repo := userServiceFixture(t)

	_, err := svc.UpdateProfile(context.Background(), "u1", map[string]any{"email": "broken"}, userCtx)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("invalid patch must not reach storage")
	}
}

func TestUserService_UpdateSensitiveData_AdminOnly(t *testing.T) {
	svc, repo := userServiceFixture(t)
	patch := map[string]any{"salary": 60000.0}

	// Forbidden for a user-role caller even on their own record.
	if _, err := svc.UpdateSensitiveData(context.Background(), "u1", patch, userCtx); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("storage must not be called")
	}

	changed, err := svc.UpdateSensitiveData(context.Background(), "u1", patch, adminCtx)
	if err != nil {
		t.Fatalf("UpdateSensitiveData failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected change")
	}
}

func TestUserService_UpdateSensitiveData_EmptyPatch(t *testing.T) {
	svc, repo := userServiceFixture(t)

	changed, err := svc.UpdateSensitiveData(context.Background(), "u1", map[string]any{}, adminCtx)
	if err != nil {
		t.Fatalf("UpdateSensitiveData failed: %v", err)
	}
	if changed || repo.updateCalls != 0 {
		t.Fatalf("empty patch must skip storage and report false")
	}
}

func TestUserService_StorageFailureSurfacesDatabaseError(t *testing.T) {
	svc, repo := userServiceFixture(t)
	repo.updateErr = &domain.DatabaseError{Op: "update_profile", Cause: errors.New("io timeout")}

	_, err := svc.UpdateProfile(context.Background(), "u1", map[string]any{"name": "X"}, userCtx)
	var dberr *domain.DatabaseError
	if !errors.As(err, &dberr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}
}
