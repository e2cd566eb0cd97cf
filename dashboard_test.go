package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/model"
)

func TestDashboardStats(t *testing.T) {
	h := newHarness(t)
	h.ds.On("CountOrdersByStatus", mock.Anything).Return(map[model.OrderStatus]int{
		model.OrderPending:   4,
		model.OrderConfirmed: 2,
		model.OrderShipped:   1,
		model.OrderCancelled: 3,
	}, nil)
	h.ds.On("TotalRevenue", mock.Anything, []model.OrderStatus{model.OrderConfirmed, model.OrderShipped, model.OrderDelivered}).
		Return(decimal.NewFromInt(7500), nil)
	h.ds.On("CountCustomers", mock.Anything).Return(6, nil)
	h.ds.On("RecentOrders", mock.Anything, 10).Return([]model.Order{*joinedOrder(model.OrderPending)}, nil)

	stats, err := h.sf.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalOrders)
	assert.Equal(t, 4, stats.PendingOrders)
	assert.Equal(t, 2, stats.ConfirmedOrders)
	assert.Equal(t, 1, stats.ShippedOrders)
	assert.Equal(t, 0, stats.DeliveredOrders)
	assert.Equal(t, 3, stats.CancelledOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(7500)))
	assert.Equal(t, 6, stats.TotalCustomers)
	assert.Len(t, stats.RecentOrders, 1)
	h.ds.AssertExpectations(t)
}

func TestDashboardStats_Error(t *testing.T) {
	h := newHarness(t)
	h.ds.On("CountOrdersByStatus", mock.Anything).Return(nil, errors.New("db down"))

	_, err := h.sf.DashboardStats(context.Background())
	assert.Error(t, err)
}
