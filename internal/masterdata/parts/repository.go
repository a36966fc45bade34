package parts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/platform/db"
)

const constraintSupplierFKey = "parts_supplier_id_fkey"

// Repository persists parts.
type Repository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]Part, error)
	Get(ctx context.Context, id int64) (Part, error)
	Create(ctx context.Context, part Part) (Part, error)
	Update(ctx context.Context, part Part) (Part, error)
	Delete(ctx context.Context, id int64) (Part, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations run inside a bulk delete.
type TxRepository interface {
	shared.BulkTx
	ImageKeys(ctx context.Context, ids []int64) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

type txRepository struct {
	tx pgx.Tx
}

// NewRepository constructs the Postgres repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, category, supplier_id, cost_price, selling_price, stock_quantity, reorder_level, description, image, created_by, updated_by, created_at, updated_at`

func scanPart(row pgx.Row) (Part, error) {
	var p Part
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.SupplierID, &p.CostPrice, &p.SellingPrice, &p.StockQuantity,
		&p.ReorderLevel, &p.Description, &p.Image, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM parts`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Part, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM parts ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Part, error) {
	p, err := scanPart(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM parts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Part) (Part, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO parts (name, category, supplier_id, cost_price, selling_price, stock_quantity, reorder_level, description, image, created_by, updated_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at, updated_at`,
		p.Name, p.Category, p.SupplierID, p.CostPrice, p.SellingPrice, p.StockQuantity, p.ReorderLevel, p.Description, p.Image, p.CreatedBy, p.UpdatedBy)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if db.IsForeignKeyViolation(err, constraintSupplierFKey) {
			return Part{}, ErrSupplierMissing
		}
		return Part{}, fmt.Errorf("insert part: %w", err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p Part) (Part, error) {
	row := r.pool.QueryRow(ctx, `UPDATE parts SET name = $1, category = $2, supplier_id = $3, cost_price = $4, selling_price = $5,
stock_quantity = $6, reorder_level = $7, description = $8, image = $9, updated_by = $10, updated_at = NOW()
WHERE id = $11
RETURNING updated_at`,
		p.Name, p.Category, p.SupplierID, p.CostPrice, p.SellingPrice, p.StockQuantity, p.ReorderLevel, p.Description, p.Image, p.UpdatedBy, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Part{}, shared.ErrNotFound
		case db.IsForeignKeyViolation(err, constraintSupplierFKey):
			return Part{}, ErrSupplierMissing
		}
		return Part{}, fmt.Errorf("update part %d: %w", p.ID, err)
	}
	return p, nil
}

// Delete removes the part and returns the deleted row.
func (r *repository) Delete(ctx context.Context, id int64) (Part, error) {
	p, err := scanPart(r.pool.QueryRow(ctx, `DELETE FROM parts WHERE id = $1 RETURNING `+columns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, shared.ErrNotFound
	}
	if err != nil {
		return Part{}, fmt.Errorf("delete part %d: %w", id, err)
	}
	return p, nil
}

func (t *txRepository) LockIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := t.tx.Query(ctx, `SELECT id FROM parts WHERE id = ANY($1) FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (t *txRepository) ImageKeys(ctx context.Context, ids []int64) ([]string, error) {
	rows, err := t.tx.Query(ctx, `SELECT image FROM parts WHERE id = ANY($1) AND image IS NOT NULL AND image <> ''`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (t *txRepository) DeleteIDs(ctx context.Context, ids []int64) (int, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM parts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
