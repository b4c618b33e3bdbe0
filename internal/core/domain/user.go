package domain

import (
	"strconv"
	"time"
)

// Role is the closed set of authorization roles. No other value is
// constructible through ParseRole or the decode operations.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole converts an untrusted string into a Role, failing closed on
// anything outside the enum.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleUser:
		return Role(raw), nil
	}
	verr := &ValidationError{}
	verr.add("role", "role must be one of: admin user")
	return "", verr
}

// IsAdmin reports whether the role grants access to sensitive projections.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }

// UserView is the role-scoped read projection of a user: either a *BaseView
// or a *FullView. Callers type-switch on the concrete type.
type UserView interface {
	isUserView()
}

// BaseView carries the fields every authenticated caller may see.
type BaseView struct {
	ID        string    `json:"id"         validate:"required"`
	Email     string    `json:"email"      validate:"required,email"`
	Name      string    `json:"name"       validate:"required,min=1,max=255"`
	Role      Role      `json:"role"       validate:"required,oneof=admin user"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (*BaseView) isUserView() {}

// SensitiveData holds the fields visible only in admin projections.
type SensitiveData struct {
	Salary     *float64 `json:"salary,omitempty"      validate:"omitnil,gte=0"`
	NationalID *string  `json:"national_id,omitempty" validate:"omitnil,national_id"`
}

// FormatSalary renders a salary for the wire. Monetary amounts travel as
// strings with two decimal places so no client ever binary-rounds them.
func FormatSalary(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FullView is the admin projection: the base fields plus sensitive data.
// Its BaseView is always a strict field-subset of the full record.
type FullView struct {
	BaseView
	Sensitive SensitiveData `json:"sensitive"`
}

func (*FullView) isUserView() {}

// ForRole projects the view down to what the given caller role may see.
func (f *FullView) ForRole(role Role) UserView {
	if role.IsAdmin() {
		return f
	}
	base := f.BaseView
	return &base
}

// CredentialView is the full record plus the stored password hash. It exists
// only for credential verification and is never returned to callers.
type CredentialView struct {
	FullView
	PasswordHash string `validate:"required"`
}

// NewUser carries the validated fields for creating an account.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

// Registration is the credential-creation input. Password length is only
// enforced here, never on stored hashes.
type Registration struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role"     validate:"required,oneof=admin user"`
}

// ProfileUpdate is a partial update of the caller-visible profile fields.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Email *string `json:"email,omitempty" validate:"omitnil,email"`
	Name  *string `json:"name,omitempty"  validate:"omitnil,min=1,max=255"`
}

// IsEmpty reports whether the patch would change nothing.
func (p ProfileUpdate) IsEmpty() bool { return p.Email == nil && p.Name == nil }

// SensitiveUpdate is a partial update of the admin-only fields.
type SensitiveUpdate struct {
	Salary     *float64 `json:"salary,omitempty"      validate:"omitnil,gte=0"`
	NationalID *string  `json:"national_id,omitempty" validate:"omitnil,national_id"`
}

func (p SensitiveUpdate) IsEmpty() bool { return p.Salary == nil && p.NationalID == nil }

// AuthorizationContext identifies the caller for a single request. It is
// derived from freshly loaded storage state, never from token claims alone,
// and is discarded when the request ends.
type AuthorizationContext struct {
	UserID string `json:"user_id" validate:"required"`
	Role   Role   `json:"role"    validate:"required,oneof=admin user"`
}
