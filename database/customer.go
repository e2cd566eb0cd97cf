package database

import (
	"context"
	"strings"

	"github.com/smarttech/storefront/model"
)

// GetCustomerByEmail matches the address case-insensitively.
func (d Datasource) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var c model.Customer
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, COALESCE(address, ''), COALESCE(city, ''), COALESCE(country, ''), created_at
		FROM customers
		WHERE LOWER(email) = LOWER($1)
		ORDER BY id
		LIMIT 1
	`, strings.TrimSpace(email)).Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.City, &c.Country, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "Customer not found", "Failed to retrieve customer")
	}
	return &c, nil
}

// CreateCustomer inserts a customer and returns it with its id.
func (d Datasource) CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error) {
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO customers (full_name, email, phone, address, city, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, c.FullName, c.Email, c.Phone, c.Address, c.City, c.Country).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "Customer not found", "Failed to create customer")
	}
	return &c, nil
}
