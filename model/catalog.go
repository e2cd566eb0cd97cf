package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID             int64                  `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	Price          decimal.Decimal        `json:"price"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Images         []string               `json:"images,omitempty"`
	VideoURL       string                 `json:"video_url,omitempty"`
	IsActive       bool                   `json:"is_active"`
	StockQuantity  int                    `json:"stock_quantity"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      *time.Time             `json:"updated_at,omitempty"`
}

// ProductUpdate carries a partial update; nil fields are left alone.
type ProductUpdate struct {
	Name           *string                `json:"name,omitempty"`
	Description    *string                `json:"description,omitempty"`
	Price          *decimal.Decimal       `json:"price,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Images         []string               `json:"images,omitempty"`
	VideoURL       *string                `json:"video_url,omitempty"`
	StockQuantity  *int                   `json:"stock_quantity,omitempty"`
	IsActive       *bool                  `json:"is_active,omitempty"`
}

// Apply copies the set fields of u onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Specifications != nil {
		p.Specifications = u.Specifications
	}
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.VideoURL != nil {
		p.VideoURL = *u.VideoURL
	}
	if u.StockQuantity != nil {
		p.StockQuantity = *u.StockQuantity
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

type Customer struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
