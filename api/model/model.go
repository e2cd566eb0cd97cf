/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/smarttech/storefront/model"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func positiveDecimal(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return errors.New("must be a number")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
}

func orderStatusValues() []interface{} {
	values := make([]interface{}, 0, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		values = append(values, string(s))
	}
	return values
}

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(3, 254),
		validation.Match(emailPattern).Error("must be a valid email address"),
	}
}

type CreateProduct struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Price          *decimal.Decimal       `json:"price"`
	Specifications map[string]interface{} `json:"specifications"`
	Images         []string               `json:"images"`
	VideoURL       string                 `json:"video_url"`
	StockQuantity  *int                   `json:"stock_quantity"`
}

func (p *CreateProduct) ValidateCreateProduct() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Price, validation.Required, validation.By(positiveDecimal)),
		validation.Field(&p.StockQuantity, validation.Min(0)),
	)
}

// ToProduct converts the request into an active product. Stock defaults to 1.
func (p *CreateProduct) ToProduct() model.Product {
	stock := 1
	if p.StockQuantity != nil {
		stock = *p.StockQuantity
	}
	return model.Product{
		Name:           strings.TrimSpace(p.Name),
		Description:    p.Description,
		Price:          *p.Price,
		Specifications: p.Specifications,
		Images:         p.Images,
		VideoURL:       p.VideoURL,
		IsActive:       true,
		StockQuantity:  stock,
	}
}

type UpdateProduct struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Price          *decimal.Decimal       `json:"price"`
	Specifications map[string]interface{} `json:"specifications"`
	Images         []string               `json:"images"`
	VideoURL       *string                `json:"video_url"`
	StockQuantity  *int                   `json:"stock_quantity"`
	IsActive       *bool                  `json:"is_active"`
}

func (p *UpdateProduct) ValidateUpdateProduct() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&p.Price, validation.By(positiveDecimal)),
		validation.Field(&p.StockQuantity, validation.Min(0)),
	)
}

func (p *UpdateProduct) ToProductUpdate() model.ProductUpdate {
	return model.ProductUpdate{
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Specifications: p.Specifications,
		Images:         p.Images,
		VideoURL:       p.VideoURL,
		StockQuantity:  p.StockQuantity,
		IsActive:       p.IsActive,
	}
}

// UpdateProductMedia replaces a product's gallery and video. Omitted fields
// are left unchanged.
type UpdateProductMedia struct {
	Images   []string `json:"images"`
	VideoURL *string  `json:"video_url"`
}
