package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/penlight/blog-api-core/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and fills in the store-assigned timestamps.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, name, username, password_hash)
	           VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, u.ID, u.Name, u.Username, u.PasswordHash).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByID fetches a user row or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	const q = `SELECT id, name, username, password_hash, created_at, updated_at FROM users WHERE id=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername fetches by the stored (lowercase) username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const q = `SELECT id, name, username, password_hash, created_at, updated_at FROM users WHERE username=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, username); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	const q = `SELECT id, name, username, password_hash, created_at, updated_at FROM users ORDER BY created_at`
	var users []*entity.User
	if err := r.db.SelectContext(ctx, &users, q); err != nil {
		return nil, err
	}
	return users, nil
}

// Update rewrites name and username, returning the updated row or
// sql.ErrNoRows when the user is gone.
func (r *UserRepo) Update(ctx context.Context, id, name, username string) (*entity.User, error) {
	const q = `UPDATE users SET name=$2, username=$3, updated_at=NOW() WHERE id=$1
	           RETURNING id, name, username, password_hash, created_at, updated_at`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, name, username); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes the row permanently. Articles and page views referencing
// the user are left in place.
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
