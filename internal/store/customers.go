package store

import (
	"context"
	"database/sql"
	"time"
)

// Customer is an identity record for a workspace visitor.
type Customer struct {
	ID         int64
	CustomerID string
	Name       string
	Phone      *string
	Email      *string
	CreatedAt  time.Time
}

const customerColumns = `id, customer_id, name, phone, email, created_at`

// CreateCustomer inserts a new customer and returns the stored row.
func (q *Queries) CreateCustomer(ctx context.Context, externalID, name string, phone, email *string) (Customer, error) {
	row := q.db.QueryRow(ctx, `INSERT INTO customers (customer_id, name, phone, email)
VALUES ($1, $2, $3, $4) RETURNING `+customerColumns, externalID, name, phone, email)
	return scanCustomer(row)
}

// GetCustomerByID fetches a customer by primary key.
func (q *Queries) GetCustomerByID(ctx context.Context, id int64) (Customer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

// GetCustomerByExternalID fetches a customer by its external identifier.
func (q *Queries) GetCustomerByExternalID(ctx context.Context, externalID string) (Customer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, externalID)
	return scanCustomer(row)
}

// ListCustomers returns customers ordered by creation time, newest first.
func (q *Queries) ListCustomers(ctx context.Context, limit, offset int32) ([]Customer, error) {
	rows, err := q.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CountCustomers returns the total number of customers.
func (q *Queries) CountCustomers(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total)
	return total, err
}

// UpdateCustomerContact updates the mutable contact fields only.
func (q *Queries) UpdateCustomerContact(ctx context.Context, id int64, phone, email *string) (Customer, error) {
	row := q.db.QueryRow(ctx, `UPDATE customers SET phone = COALESCE($2, phone), email = COALESCE($3, email)
WHERE id = $1 RETURNING `+customerColumns, id, phone, email)
	return scanCustomer(row)
}

func scanCustomer(row interface{ Scan(...any) error }) (Customer, error) {
	var c Customer
	var phone, email sql.NullString
	if err := row.Scan(&c.ID, &c.CustomerID, &c.Name, &phone, &email, &c.CreatedAt); err != nil {
		return Customer{}, err
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	return c, nil
}
