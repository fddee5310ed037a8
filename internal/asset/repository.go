package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// ErrNotFound indicates that the requested asset does not exist.
var ErrNotFound = errors.New("asset not found")

// Repository defines persistent storage for crypto assets.
type Repository interface {
	Create(ctx context.Context, a *domain.Asset) error
	FindByID(ctx context.Context, id int64) (domain.Asset, error)
	FindByUserID(ctx context.Context, userID int64) ([]domain.Asset, error)
	SumAmountsByCurrency(ctx context.Context, userID int64, currencies []domain.Currency) (map[domain.Currency]decimal.Decimal, error)
	Update(ctx context.Context, a domain.Asset) error
	Delete(ctx context.Context, id int64) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL asset repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, a *domain.Asset) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO crypto_asset (user_id, label, currency, value)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.UserID, a.Label, int(a.Currency), a.Amount).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating asset: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.Asset, error) {
	var a domain.Asset
	var currency int
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, label, currency, value, created_at, COALESCE(updated_at, created_at)
		 FROM crypto_asset WHERE id = $1`,
		id).Scan(&a.ID, &a.UserID, &a.Label, &currency, &a.Amount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("finding asset %d: %w", id, err)
	}
	a.Currency = domain.Currency(currency)
	return a, nil
}

func (r *PgRepository) FindByUserID(ctx context.Context, userID int64) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, label, currency, value, created_at, COALESCE(updated_at, created_at)
		 FROM crypto_asset WHERE user_id = $1 ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing assets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		var currency int
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &currency, &a.Amount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.Currency = domain.Currency(currency)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// SumAmountsByCurrency aggregates raw amounts per currency in the database.
// Currencies the user holds nothing of produce no row and no map entry.
func (r *PgRepository) SumAmountsByCurrency(ctx context.Context, userID int64, currencies []domain.Currency) (map[domain.Currency]decimal.Decimal, error) {
	codes := make([]int, len(currencies))
	for i, c := range currencies {
		codes[i] = int(c)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT currency, SUM(value)
		 FROM crypto_asset
		 WHERE user_id = $1 AND currency = ANY($2)
		 GROUP BY currency`,
		userID, codes)
	if err != nil {
		return nil, fmt.Errorf("summing assets for user %d: %w", userID, err)
	}
	defer rows.Close()

	totals := make(map[domain.Currency]decimal.Decimal)
	for rows.Next() {
		var currency int
		var total decimal.Decimal
		if err := rows.Scan(&currency, &total); err != nil {
			return nil, fmt.Errorf("scanning currency total: %w", err)
		}
		totals[domain.Currency(currency)] = total
	}
	return totals, rows.Err()
}

func (r *PgRepository) Update(ctx context.Context, a domain.Asset) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE crypto_asset
		 SET label = $2, currency = $3, value = $4, updated_at = NOW()
		 WHERE id = $1`,
		a.ID, a.Label, int(a.Currency), a.Amount)
	if err != nil {
		return fmt.Errorf("updating asset %d: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crypto_asset WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting asset %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
