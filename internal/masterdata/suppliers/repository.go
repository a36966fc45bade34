package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/platform/db"
)

const (
	constraintCode      = "suppliers_supplier_code_key"
	constraintPartsFKey = "parts_supplier_id_fkey"
)

// Repository persists suppliers.
type Repository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Supplier, error)
	Exists(ctx context.Context, id int64) (bool, error)
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, supplier Supplier) (Supplier, error)
	Delete(ctx context.Context, id int64) error
	CountReferences(ctx context.Context, ids []int64) (int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations run inside a bulk delete.
type TxRepository interface {
	LockIDs(ctx context.Context, ids []int64) ([]int64, error)
	DeleteIDs(ctx context.Context, ids []int64) (int, error)
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

const columns = `id, supplier_code, name, contact_person, phone, fax, email, postal_code, prefecture, city, town, building, website, remarks, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.SupplierCode, &s.Name, &s.ContactPerson, &s.Phone, &s.Fax, &s.Email,
		&s.PostalCode, &s.Prefecture, &s.City, &s.Town, &s.Building, &s.Website, &s.Remarks, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM suppliers ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) ListByIDs(ctx context.Context, ids []int64) ([]Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM suppliers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Supplier, error) {
	var out []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	s, err := scanSupplier(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM suppliers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *repository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE supplier_code = $1 AND id <> $2)`, code, excludeID).Scan(&ok)
	return ok, err
}

func (r *repository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO suppliers (supplier_code, name, contact_person, phone, fax, email, postal_code, prefecture, city, town, building, website, remarks)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, created_at, updated_at`,
		s.SupplierCode, s.Name, s.ContactPerson, s.Phone, s.Fax, s.Email, s.PostalCode, s.Prefecture, s.City, s.Town, s.Building, s.Website, s.Remarks)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, constraintCode) {
			return Supplier{}, ErrCodeTaken
		}
		return Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return s, nil
}

func (r *repository) Update(ctx context.Context, s Supplier) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `UPDATE suppliers SET supplier_code = $1, name = $2, contact_person = $3, phone = $4, fax = $5, email = $6,
postal_code = $7, prefecture = $8, city = $9, town = $10, building = $11, website = $12, remarks = $13, updated_at = NOW()
WHERE id = $14
RETURNING updated_at`,
		s.SupplierCode, s.Name, s.ContactPerson, s.Phone, s.Fax, s.Email, s.PostalCode, s.Prefecture, s.City, s.Town, s.Building, s.Website, s.Remarks, s.ID)
	if err := row.Scan(&s.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Supplier{}, shared.ErrNotFound
		case db.IsUniqueViolation(err, constraintCode):
			return Supplier{}, ErrCodeTaken
		}
		return Supplier{}, fmt.Errorf("update supplier %d: %w", s.ID, err)
	}
	return s, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, constraintPartsFKey) {
			return shared.ErrProtected
		}
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountReferences(ctx context.Context, ids []int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM parts WHERE supplier_id = ANY($1)`, ids).Scan(&n)
	return n, err
}

func (t *txRepository) LockIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := t.tx.Query(ctx, `SELECT id FROM suppliers WHERE id = ANY($1) FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (t *txRepository) DeleteIDs(ctx context.Context, ids []int64) (int, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM suppliers WHERE id = ANY($1)`, ids)
	if err != nil {
		if db.IsForeignKeyViolation(err, constraintPartsFKey) {
			return 0, shared.ErrProtected
		}
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
