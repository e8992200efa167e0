package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"postboard/pkg/pg"
)

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UserRepository persists user accounts.
type UserRepository struct {
	db DB
}

// NewUserRepository returns a users repository backed by db.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns it with the assigned ID.
// Returns ErrDuplicate when the email is already taken.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2)
		 RETURNING id, email, password_hash, confirmed`,
		email, passwordHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Confirmed)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return User{}, fmt.Errorf("%w: email %s", ErrDuplicate, email)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindByEmail looks up a user by exact email match.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, confirmed FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Confirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// SetConfirmed marks the user's account as confirmed. Confirming an already
// confirmed account is a no-op.
func (r *UserRepository) SetConfirmed(ctx context.Context, email string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET confirmed = TRUE WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
