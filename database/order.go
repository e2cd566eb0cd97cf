package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

const orderJoinedSelect = `
	SELECT o.id, o.customer_id, o.product_id, o.quantity, o.total_price, o.status,
		COALESCE(o.special_requirements, ''), COALESCE(o.delivery_address, ''), o.order_date, o.updated_at,
		c.id, c.full_name, c.email, c.phone, COALESCE(c.address, ''), COALESCE(c.city, ''), COALESCE(c.country, ''), c.created_at,
		p.id, p.name, p.price
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
	JOIN products p ON p.id = o.product_id`

// CreateOrder inserts an order and returns it with its id and timestamps.
func (d Datasource) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, product_id, quantity, total_price, status, special_requirements, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, order_date
	`, o.CustomerID, o.ProductID, o.Quantity, o.TotalPrice, o.Status, o.SpecialRequirements, o.DeliveryAddress).Scan(&o.ID, &o.OrderDate)
	if err != nil {
		return nil, mapError(err, "Order not found", "Failed to create order")
	}
	return &o, nil
}

// GetOrder loads one order joined with its customer and product.
//
// Parameters:
// - ctx context.Context: request context.
// - id int64: the order id.
//
// Returns:
// - *model.Order: the order.
// - error: a NotFound APIError when no row matches.
func (d Datasource) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx, orderJoinedSelect+` WHERE o.id = $1`, id)
	o, err := scanJoinedOrder(row)
	if err != nil {
		return nil, mapError(err, "Order not found", "Failed to retrieve order")
	}
	return o, nil
}

// ListOrders returns orders newest first. An empty status matches every order.
func (d Datasource) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if filter.Status != "" {
		rows, err = d.Conn.QueryContext(ctx, orderJoinedSelect+`
			WHERE o.status = $1
			ORDER BY o.order_date DESC
			OFFSET $2 LIMIT $3`, filter.Status, filter.Skip, filter.Limit)
	} else {
		rows, err = d.Conn.QueryContext(ctx, orderJoinedSelect+`
			ORDER BY o.order_date DESC
			OFFSET $1 LIMIT $2`, filter.Skip, filter.Limit)
	}
	if err != nil {
		return nil, mapError(err, "Order not found", "Failed to list orders")
	}
	return collectOrders(rows)
}

// UpdateOrder writes status, special requirements and delivery address.
func (d Datasource) UpdateOrder(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, special_requirements = $3, delivery_address = $4, updated_at = $5
		WHERE id = $1
	`, o.ID, o.Status, o.SpecialRequirements, o.DeliveryAddress, now)
	if err != nil {
		return mapError(err, "Order not found", "Failed to update order")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Order not found", nil)
	}
	o.UpdatedAt = &now
	return nil
}

// DeleteOrder removes an order. A missing order is a NotFound APIError.
func (d Datasource) DeleteOrder(ctx context.Context, id int64) error {
	result, err := d.Conn.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Order not found", "Failed to delete order")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Order not found", nil)
	}
	return nil
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	defer rows.Close()
	orders := []model.Order{}
	for rows.Next() {
		o, err := scanJoinedOrder(rows)
		if err != nil {
			return nil, mapError(err, "Order not found", "Failed to scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Order not found", "Failed to list orders")
	}
	return orders, nil
}

func scanJoinedOrder(s scanner) (*model.Order, error) {
	var (
		o model.Order
		c model.Customer
		p model.Product
	)
	if err := s.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.TotalPrice, &o.Status,
		&o.SpecialRequirements, &o.DeliveryAddress, &o.OrderDate, &o.UpdatedAt,
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.City, &c.Country, &c.CreatedAt,
		&p.ID, &p.Name, &p.Price); err != nil {
		return nil, err
	}
	o.Customer = &c
	o.Product = &p
	return &o, nil
}
