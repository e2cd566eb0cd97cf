package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Admin struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type DashboardStats struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
	ShippedOrders   int             `json:"shipped_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCustomers  int             `json:"total_customers"`
	RecentOrders    []Order         `json:"recent_orders"`
}

// MediaKind is the upload directory a file lives in.
type MediaKind string

const (
	MediaImages MediaKind = "images"
	MediaVideos MediaKind = "videos"
)

func (k MediaKind) Valid() bool {
	return k == MediaImages || k == MediaVideos
}

type MediaFile struct {
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename,omitempty"`
	URL              string    `json:"url"`
	Size             int64     `json:"size"`
	Created          time.Time `json:"created"`
}
