package storefront

import (
	"context"

	"github.com/smarttech/storefront/model"
)

const recentOrdersLimit = 10

// DashboardStats summarises orders, revenue and customers for the admin
// dashboard. Revenue counts confirmed, shipped and delivered orders.
func (s *Storefront) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "DashboardStats")
	defer span.End()

	counts, err := s.datasource.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var revenueStatuses []model.OrderStatus
	for _, status := range model.OrderStatuses {
		if status.CountsAsRevenue() {
			revenueStatuses = append(revenueStatuses, status)
		}
	}
	revenue, err := s.datasource.TotalRevenue(ctx, revenueStatuses)
	if err != nil {
		return nil, err
	}

	customers, err := s.datasource.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.datasource.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return &model.DashboardStats{
		TotalOrders:     total,
		PendingOrders:   counts[model.OrderPending],
		ConfirmedOrders: counts[model.OrderConfirmed],
		ShippedOrders:   counts[model.OrderShipped],
		DeliveredOrders: counts[model.OrderDelivered],
		CancelledOrders: counts[model.OrderCancelled],
		TotalRevenue:    revenue,
		TotalCustomers:  customers,
		RecentOrders:    recent,
	}, nil
}
