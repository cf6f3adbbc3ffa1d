package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
	SoftDelete(ctx context.Context, id string) error

	// HardDelete removes the user's bookings and then the user row inside
	// one transaction.
	HardDelete(ctx context.Context, id string) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{pool: pool}
}

const userColumns = "id, name, email, role, password_hash, is_deleted, created_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.IsDeleted, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM public.users
		WHERE email = $1 AND is_deleted = false
	`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM public.users
		WHERE id = $1
	`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO public.users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, u.Name, u.Email, u.Role, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"u.id", "u.name", "u.email", "u.role", "u.password_hash", "u.is_deleted", "u.created_at",
		"(SELECT count(*) FROM public.bookings b WHERE b.user_id = u.id) AS total_bookings",
		"count(*) OVER() AS total_count",
	).From("public.users u")

	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"u.role": filter.Role})
	}
	if !filter.IncludeDeleted {
		query = query.Where(squirrel.Eq{"u.is_deleted": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"u.email": pattern},
		})
	}

	// Sort column is validated against a whitelist; anything else falls back
	// to created_at.
	orderBy := "created_at"
	switch filter.SortBy {
	case "id", "name", "email", "role", "created_at", "is_deleted":
		orderBy = filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder == "asc" || filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("u." + orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	offset := (filter.Page - 1) * filter.Limit
	query = query.Limit(uint64(filter.Limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	var total int
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.IsDeleted, &u.CreatedAt,
			&u.TotalBookings, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, &u)
	}
	return users, total, rows.Err()
}

func (r *pgxUserRepository) UpdateRole(ctx context.Context, id string, role Role) (*User, error) {
	const query = `
		UPDATE public.users
		SET role = $1
		WHERE id = $2 AND is_deleted = false
		RETURNING ` + userColumns + `
	`

	u, err := scanUser(r.pool.QueryRow(ctx, query, role, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("update user role failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE public.users
		SET is_deleted = true
		WHERE id = $1 AND is_deleted = false
	`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) HardDelete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin hard delete tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM public.bookings WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("delete user bookings failed: %w", err)
	}

	ct, err := tx.Exec(ctx, "DELETE FROM public.users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("hard delete user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}
