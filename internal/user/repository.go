package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// ErrNotFound indicates that the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Repository defines persistent storage for users.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindByToken(ctx context.Context, token string) (domain.User, error)
	Update(ctx context.Context, u domain.User) error
	Delete(ctx context.Context, id int64) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL user repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO crypto_user (token, name, surname, email, password)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Token, u.Name, u.Surname, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PgRepository) FindByToken(ctx context.Context, token string) (domain.User, error) {
	return r.findOne(ctx, `WHERE token = $1`, token)
}

func (r *PgRepository) findOne(ctx context.Context, where string, arg any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, token, name, surname, email, password, created_at, COALESCE(updated_at, created_at)
		 FROM crypto_user `+where,
		arg).Scan(&u.ID, &u.Token, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("finding user: %w", err)
	}
	return u, nil
}

func (r *PgRepository) Update(ctx context.Context, u domain.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE crypto_user
		 SET name = $2, surname = $3, email = $4, password = $5, updated_at = NOW()
		 WHERE id = $1`,
		u.ID, u.Name, u.Surname, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("updating user %d: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crypto_user WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
