package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

const uniqueViolation = "23505"

// CryptoRepo is the tracked-coin store: one table, keyed by the
// lower-cased canonical id. Every mutation commits before returning.
type CryptoRepo struct {
	pool *pgxpool.Pool
}

func NewCryptoRepo(pool *pgxpool.Pool) *CryptoRepo {
	return &CryptoRepo{pool: pool}
}

func (r *CryptoRepo) List(ctx context.Context) ([]models.Crypto, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cg_id, symbol, name, price FROM cryptos ORDER BY cg_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCryptos(rows)
}

func (r *CryptoRepo) Get(ctx context.Context, cgID string) (*models.Crypto, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT cg_id, symbol, name, price FROM cryptos WHERE cg_id = $1`,
		strings.ToLower(cgID),
	)
	return scanCrypto(row, cgID)
}

func (r *CryptoRepo) Insert(ctx context.Context, c models.Crypto) (*models.Crypto, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO cryptos (cg_id, symbol, name, price)
		 VALUES ($1, $2, $3, $4)
		 RETURNING cg_id, symbol, name, price`,
		strings.ToLower(c.CgID), strings.ToLower(c.Symbol), c.Name, c.Price,
	)

	created, err := scanCrypto(row, c.CgID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: crypto %q", models.ErrConflict, strings.ToLower(c.CgID))
		}
		return nil, err
	}
	return created, nil
}

// UpdateFields applies only the fields present in upd; symbol and
// cg_id are immutable after creation.
func (r *CryptoRepo) UpdateFields(ctx context.Context, cgID string, upd models.CryptoUpdate) (*models.Crypto, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE cryptos
		 SET name = COALESCE($2, name), price = COALESCE($3, price)
		 WHERE cg_id = $1
		 RETURNING cg_id, symbol, name, price`,
		strings.ToLower(cgID), upd.Name, upd.Price,
	)
	return scanCrypto(row, cgID)
}

func (r *CryptoRepo) UpdatePrice(ctx context.Context, cgID string, price float64) (*models.Crypto, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE cryptos SET price = $2 WHERE cg_id = $1
		 RETURNING cg_id, symbol, name, price`,
		strings.ToLower(cgID), price,
	)
	return scanCrypto(row, cgID)
}

func (r *CryptoRepo) Delete(ctx context.Context, cgID string) (*models.Crypto, error) {
	row := r.pool.QueryRow(ctx,
		`DELETE FROM cryptos WHERE cg_id = $1
		 RETURNING cg_id, symbol, name, price`,
		strings.ToLower(cgID),
	)
	return scanCrypto(row, cgID)
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanCrypto(row scannable, cgID string) (*models.Crypto, error) {
	var c models.Crypto
	err := row.Scan(&c.CgID, &c.Symbol, &c.Name, &c.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: crypto %q", models.ErrNotFound, strings.ToLower(cgID))
		}
		return nil, err
	}
	return &c, nil
}

func collectCryptos(rows pgx.Rows) ([]models.Crypto, error) {
	var out []models.Crypto
	for rows.Next() {
		var c models.Crypto
		if err := rows.Scan(&c.CgID, &c.Symbol, &c.Name, &c.Price); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
