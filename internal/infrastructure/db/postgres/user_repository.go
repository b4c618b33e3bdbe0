package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corehr/identity-service/internal/core/domain"
	"github.com/corehr/identity-service/internal/core/mapper"
	"github.com/corehr/identity-service/internal/core/ports"
)

const uniqueViolation = "23505"

// Columns shared by every read. Salary crosses the boundary as text so the
// anti-corruption mapper owns the numeric parse.
const userColumns = `id, email, name, role, is_active, salary::text, national_id, created_at, updated_at`

// UserRepository is the pgx-backed storage collaborator. It hands every row
// to the anti-corruption mapper; raw rows never leave this package.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id string, role domain.Role) (domain.UserView, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	raw, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.DatabaseError{Op: "find_by_id", Cause: err}
	}

	view, err := mapper.ToView(raw, role)
	if err != nil {
		// An inconsistent persisted row is an infrastructure failure, not a
		// client error.
		return nil, &domain.DatabaseError{Op: "find_by_id", Cause: err}
	}
	return view, nil
}

func (r *UserRepository) FindAll(ctx context.Context, role domain.Role) ([]domain.UserView, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY created_at, id`)
	if err != nil {
		return nil, &domain.DatabaseError{Op: "find_all", Cause: err}
	}
	defer rows.Close()

	var raws []mapper.Row
	for rows.Next() {
		raw, err := scanUserRow(rows)
		if err != nil {
			return nil, &domain.DatabaseError{Op: "find_all", Cause: err}
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DatabaseError{Op: "find_all", Cause: err}
	}

	views, err := mapper.ToViews(raws, role)
	if err != nil {
		return nil, &domain.DatabaseError{Op: "find_all", Cause: err}
	}
	return views, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.CredentialView, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email = $1`, email)

	raw, err := scanCredentialRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.DatabaseError{Op: "find_by_email", Cause: err}
	}

	view, err := mapper.ToCredentialView(raw)
	if err != nil {
		return nil, &domain.DatabaseError{Op: "find_by_email", Cause: err}
	}
	return view, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.NewUser) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, now(), now())
		RETURNING id
	`, user.Email, user.Name, user.PasswordHash, user.Role.String()).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrEmailTaken
		}
		return "", &domain.DatabaseError{Op: "create", Cause: err}
	}
	return id, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch domain.ProfileUpdate) (bool, error) {
	sets := []string{}
	args := []any{}
	if patch.Email != nil {
		args = append(args, *patch.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if len(sets) == 0 {
		return false, nil
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrEmailTaken
		}
		return false, &domain.DatabaseError{Op: "update_profile", Cause: err}
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) UpdateSensitive(ctx context.Context, id string, patch domain.SensitiveUpdate) (bool, error) {
	sets := []string{}
	args := []any{}
	if patch.Salary != nil {
		args = append(args, *patch.Salary)
		sets = append(sets, fmt.Sprintf("salary = $%d", len(args)))
	}
	if patch.NationalID != nil {
		args = append(args, *patch.NationalID)
		sets = append(sets, fmt.Sprintf("national_id = $%d", len(args)))
	}
	if len(sets) == 0 {
		return false, nil
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, &domain.DatabaseError{Op: "update_sensitive", Cause: err}
	}
	return tag.RowsAffected() > 0, nil
}

// scanUserRow reads a user row into the loosely-typed shape the mapper
// expects. Nullable columns stay absent when NULL.
func scanUserRow(row pgx.Row) (mapper.Row, error) {
	var (
		id, email, name, role string
		isActive              bool
		salary, nationalID    *string
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &email, &name, &role, &isActive, &salary, &nationalID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	raw := mapper.Row{
		"id":         id,
		"email":      email,
		"name":       name,
		"role":       role,
		"is_active":  isActive,
		"created_at": createdAt,
		"updated_at": updatedAt,
	}
	if salary != nil {
		raw["salary"] = *salary
	}
	if nationalID != nil {
		raw["national_id"] = *nationalID
	}
	return raw, nil
}

func scanCredentialRow(row pgx.Row) (mapper.Row, error) {
	var (
		id, email, name, role string
		isActive              bool
		salary, nationalID    *string
		createdAt, updatedAt  time.Time
		passwordHash          string
	)
	if err := row.Scan(&id, &email, &name, &role, &isActive, &salary, &nationalID, &createdAt, &updatedAt, &passwordHash); err != nil {
		return nil, err
	}

	raw := mapper.Row{
		"id":            id,
		"email":         email,
		"name":          name,
		"role":          role,
		"is_active":     isActive,
		"created_at":    createdAt,
		"updated_at":    updatedAt,
		"password_hash": passwordHash,
	}
	if salary != nil {
		raw["salary"] = *salary
	}
	if nationalID != nil {
		raw["national_id"] = *nationalID
	}
	return raw, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ ports.UserRepository = (*UserRepository)(nil)
