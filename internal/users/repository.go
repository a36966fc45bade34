package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goayasushi/zaiko-be/internal/platform/db"
)

// ErrEmailTaken is returned when creating a user whose email already exists.
var ErrEmailTaken = errors.New("users: email already registered")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_active, is_staff, is_superuser, date_joined, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.DateJoined, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// FindByEmail fetches a user by login email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email)))
}

// Get fetches a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// ListByIDs returns the users matching ids. Unknown ids are skipped.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new account and returns it with server assigned fields.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, first_name, last_name, is_active, is_staff, is_superuser, date_joined, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		NormalizeEmail(u.Email), u.PasswordHash, u.FirstName, u.LastName, u.IsActive, u.IsStaff, u.IsSuperuser, now,
	).Scan(&u.ID)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return User{}, fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
		}
		return User{}, err
	}
	u.Email = NormalizeEmail(u.Email)
	u.DateJoined = now
	u.UpdatedAt = now
	return u, nil
}
