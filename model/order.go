package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CountsAsRevenue reports whether an order in this status contributes to revenue.
func (s OrderStatus) CountsAsRevenue() bool {
	return s == OrderConfirmed || s == OrderShipped || s == OrderDelivered
}

type Order struct {
	ID                  int64           `json:"id"`
	CustomerID          int64           `json:"customer_id"`
	ProductID           int64           `json:"product_id"`
	Quantity            int             `json:"quantity"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	Status              OrderStatus     `json:"status"`
	SpecialRequirements string          `json:"special_requirements,omitempty"`
	DeliveryAddress     string          `json:"delivery_address,omitempty"`
	OrderDate           time.Time       `json:"order_date"`
	UpdatedAt           *time.Time      `json:"updated_at,omitempty"`
	Customer            *Customer       `json:"customer,omitempty"`
	Product             *Product        `json:"product,omitempty"`
}

// OrderUpdate carries a partial update; nil fields are left alone.
type OrderUpdate struct {
	Status              *OrderStatus `json:"status,omitempty"`
	SpecialRequirements *string      `json:"special_requirements,omitempty"`
	DeliveryAddress     *string      `json:"delivery_address,omitempty"`
}

type OrderFilter struct {
	Skip   int
	Limit  int
	Status OrderStatus
}

// OrderSnapshot is the part of an order the notification channels see.
type OrderSnapshot struct {
	ID                  int64           `json:"id"`
	ProductName         string          `json:"product_name"`
	Quantity            int             `json:"quantity"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	Status              OrderStatus     `json:"status"`
	SpecialRequirements string          `json:"special_requirements,omitempty"`
	DeliveryAddress     string          `json:"delivery_address,omitempty"`
	OrderDate           time.Time       `json:"order_date"`
}

type CustomerSnapshot struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
}

// NotificationPayload is built once per order event and handed by value to
// every delivery channel.
type NotificationPayload struct {
	Order    OrderSnapshot    `json:"order"`
	Customer CustomerSnapshot `json:"customer"`
}

// NewNotificationPayload projects an order with its customer and product.
// productName is used when the order does not carry the product.
func NewNotificationPayload(o Order, c Customer, productName string) NotificationPayload {
	if o.Product != nil && o.Product.Name != "" {
		productName = o.Product.Name
	}
	return NotificationPayload{
		Order: OrderSnapshot{
			ID:                  o.ID,
			ProductName:         productName,
			Quantity:            o.Quantity,
			TotalPrice:          o.TotalPrice,
			Status:              o.Status,
			SpecialRequirements: o.SpecialRequirements,
			DeliveryAddress:     o.DeliveryAddress,
			OrderDate:           o.OrderDate,
		},
		Customer: CustomerSnapshot{
			FullName: c.FullName,
			Email:    c.Email,
			Phone:    c.Phone,
			Address:  c.Address,
			City:     c.City,
		},
	}
}
