package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())

	assert.True(t, OrderConfirmed.CountsAsRevenue())
	assert.True(t, OrderDelivered.CountsAsRevenue())
	assert.False(t, OrderPending.CountsAsRevenue())
	assert.False(t, OrderCancelled.CountsAsRevenue())
}

func TestNewNotificationPayload(t *testing.T) {
	date := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	o := Order{
		ID:              42,
		Quantity:        2,
		TotalPrice:      decimal.RequireFromString("4998"),
		Status:          OrderPending,
		DeliveryAddress: "House 7, Road 3, Dhanmondi",
		OrderDate:       date,
	}
	c := Customer{FullName: "Rahim Uddin", Email: "rahim@example.com", Phone: "01700000000", City: "Dhaka"}

	p := NewNotificationPayload(o, c, "RK3588 75\"")
	assert.Equal(t, int64(42), p.Order.ID)
	assert.Equal(t, "RK3588 75\"", p.Order.ProductName)
	assert.Equal(t, "House 7, Road 3, Dhanmondi", p.Order.DeliveryAddress)
	assert.Equal(t, "", p.Order.SpecialRequirements)
	assert.Equal(t, "Dhaka", p.Customer.City)
	assert.Equal(t, date, p.Order.OrderDate)

	o.Product = &Product{Name: "RK3588 86\""}
	p = NewNotificationPayload(o, c, "ignored")
	assert.Equal(t, "RK3588 86\"", p.Order.ProductName)
}

func TestProductUpdateApply(t *testing.T) {
	p := Product{Name: "Board", Price: decimal.NewFromInt(100), IsActive: true, StockQuantity: 3}
	price := decimal.NewFromInt(120)
	inactive := false
	ProductUpdate{Price: &price, IsActive: &inactive, Images: []string{"/static/images/a.png"}}.Apply(&p)

	assert.Equal(t, "Board", p.Name)
	assert.True(t, price.Equal(p.Price))
	assert.False(t, p.IsActive)
	assert.Equal(t, 3, p.StockQuantity)
	assert.Equal(t, []string{"/static/images/a.png"}, p.Images)
}

func TestPriceMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Product{ID: 1, Name: "Board", Price: decimal.RequireFromString("2499.5")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":2499.5`)
}
