package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pdt-ict/portal/internal/shared"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password, first_name, last_name, created_at, updated_at`

// Store defines persistence operations for user accounts. Lookups of absent
// records fail with shared.ErrNotFound; persistence failures wrap shared.ErrStore.
type Store interface {
	Create(ctx context.Context, in NewUser) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	Update(ctx context.Context, id string, fields UpdateFields) (*User, error)
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Store using PostgreSQL.
type PGRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db, now: time.Now}
}

// Create inserts a new account. A duplicate email fails with shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, in NewUser) (*User, error) {
	now := r.now().UTC()
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, password, first_name, last_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING `+userColumns,
		uuid.NewString(), in.Email, in.PasswordHash, in.FirstName, in.LastName, now)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("users: create: %w", shared.ErrConflict)
		}
		return nil, shared.StoreError("users: create", err)
	}
	return user, nil
}

// FindByEmail fetches a user by exact email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return r.lookup("users: find by email", row)
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if err := checkID("users: find by id", id); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return r.lookup("users: find by id", row)
}

// UpdatePassword replaces the stored hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	if err := checkID("users: update password", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`,
		id, hash, r.now().UTC())
	if err != nil {
		return shared.StoreError("users: update password", err)
	}
	return requireAffected("users: update password", res)
}

// Update applies a partial profile update and returns the stored record.
func (r *PGRepository) Update(ctx context.Context, id string, fields UpdateFields) (*User, error) {
	if err := checkID("users: update", id); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET
		   email = COALESCE($2, email),
		   first_name = COALESCE($3, first_name),
		   last_name = COALESCE($4, last_name),
		   updated_at = $5
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, nullable(fields.Email), nullable(fields.FirstName), nullable(fields.LastName), r.now().UTC())
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("users: update: %w", shared.ErrNotFound)
		case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
			return nil, fmt.Errorf("users: update: %w", shared.ErrConflict)
		}
		return nil, shared.StoreError("users: update", err)
	}
	return user, nil
}

// Delete removes the account.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	if err := checkID("users: delete", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return shared.StoreError("users: delete", err)
	}
	return requireAffected("users: delete", res)
}

// checkID maps ids that cannot be a uuid to ErrNotFound without touching the database.
func checkID(op, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s: %w", op, shared.ErrNotFound)
	}
	return nil
}

func (r *PGRepository) lookup(op string, row *sql.Row) (*User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, shared.ErrNotFound)
		}
		return nil, shared.StoreError(op, err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return shared.StoreError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, shared.ErrNotFound)
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Store = (*PGRepository)(nil)
