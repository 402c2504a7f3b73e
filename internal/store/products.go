package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Product is a catalog item orderable during a session.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Category  string
	IsActive  bool
	CreatedAt time.Time
}

const productColumns = `id, name, price, category, is_active, created_at`

// CreateProduct inserts a catalog item.
func (q *Queries) CreateProduct(ctx context.Context, name string, price decimal.Decimal, category string) (Product, error) {
	row := q.db.QueryRow(ctx, `INSERT INTO products (name, price, category)
VALUES ($1, $2, $3) RETURNING `+productColumns, name, money.ToNumeric(price), category)
	return scanProduct(row)
}

// GetProductByID fetches a product by primary key.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListProducts returns catalog items, optionally restricted to active ones.
func (q *Queries) ListProducts(ctx context.Context, activeOnly bool, limit, offset int32) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name LIMIT $1 OFFSET $2`
	if activeOnly {
		query = `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY name LIMIT $1 OFFSET $2`
	}
	rows, err := q.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts counts catalog items, optionally restricted to active ones.
func (q *Queries) CountProducts(ctx context.Context, activeOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	var total int64
	err := q.db.QueryRow(ctx, query).Scan(&total)
	return total, err
}

// UpdateProduct modifies a catalog item's name, price, category and active flag.
func (q *Queries) UpdateProduct(ctx context.Context, id int64, name string, price decimal.Decimal, category string, isActive bool) (Product, error) {
	row := q.db.QueryRow(ctx, `UPDATE products SET name = $2, price = $3, category = $4, is_active = $5
WHERE id = $1 RETURNING `+productColumns, id, name, money.ToNumeric(price), category, isActive)
	return scanProduct(row)
}

// DeactivateProduct soft-deletes a catalog item.
func (q *Queries) DeactivateProduct(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `UPDATE products SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	var price pgtype.Numeric
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Category, &p.IsActive, &p.CreatedAt); err != nil {
		return Product{}, err
	}
	p.Price = money.FromNumeric(price)
	return p, nil
}
