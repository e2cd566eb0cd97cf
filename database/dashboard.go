package database

import (
	"context"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/smarttech/storefront/model"
)

func (d Datasource) CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	rows, err := d.Conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, mapError(err, "Orders not found", "Failed to count orders")
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int, len(model.OrderStatuses))
	for rows.Next() {
		var (
			status model.OrderStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapError(err, "Orders not found", "Failed to count orders")
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Orders not found", "Failed to count orders")
	}
	return counts, nil
}

// TotalRevenue sums total_price over orders in the given statuses.
func (d Datasource) TotalRevenue(ctx context.Context, statuses []model.OrderStatus) (decimal.Decimal, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var total decimal.NullDecimal
	err := d.Conn.QueryRowContext(ctx,
		`SELECT SUM(total_price) FROM orders WHERE status = ANY($1)`, pq.Array(names)).Scan(&total)
	if err != nil {
		return decimal.Zero, mapError(err, "Orders not found", "Failed to compute revenue")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (d Datasource) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := d.Conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, mapError(err, "Customers not found", "Failed to count customers")
	}
	return n, nil
}

func (d Datasource) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := d.Conn.QueryContext(ctx, orderJoinedSelect+`
		ORDER BY o.order_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapError(err, "Orders not found", "Failed to list recent orders")
	}
	return collectOrders(rows)
}
