package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/flight-booking/internal/model"
	"github.com/iliyamo/flight-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,COALESCE(password_hash,''),is_admin,created_at,updated_at"

// Create hashes password and inserts a user, returning the new ID.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, isAdmin bool, cost int) (string, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, is_admin) VALUES (?,?,?,?,?)",
		id, email, strings.TrimSpace(name), hash, isAdmin)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// EnsureCustomer resolves the user a booking belongs to.  When a user with
// id exists it is used as is.  Otherwise a user owning email wins, and when
// neither exists a non-admin user is created with the given id, email and
// name.  It returns the id the booking must reference.
func (r *UserRepo) EnsureCustomer(ctx context.Context, id, email, name string) (string, error) {
	if _, err := r.GetByID(ctx, id); err == nil {
		return id, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, name, is_admin) VALUES (?,?,?,0)",
		id, normalizeEmail(email), strings.TrimSpace(name))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
