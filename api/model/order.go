package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/smarttech/storefront/model"
)

type CustomerInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

func (c CustomerInput) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, emailRules()...),
		validation.Field(&c.Phone, validation.Required, validation.Length(3, 50)),
	)
}

func (c CustomerInput) ToCustomer() model.Customer {
	return model.Customer{
		FullName: strings.TrimSpace(c.FullName),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Address:  c.Address,
		City:     c.City,
		Country:  c.Country,
	}
}

type CreateOrder struct {
	Customer            CustomerInput `json:"customer"`
	ProductID           int64         `json:"product_id"`
	Quantity            int           `json:"quantity"`
	SpecialRequirements string        `json:"special_requirements"`
	DeliveryAddress     string        `json:"delivery_address"`
}

// ValidateCreateOrder checks the order and its nested customer. A zero
// quantity is accepted and later treated as one unit.
func (o *CreateOrder) ValidateCreateOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Customer),
		validation.Field(&o.ProductID, validation.Required, validation.Min(int64(1))),
		validation.Field(&o.Quantity, validation.Min(0)),
	)
}

func (o *CreateOrder) ToOrder() (model.Customer, model.Order) {
	return o.Customer.ToCustomer(), model.Order{
		ProductID:           o.ProductID,
		Quantity:            o.Quantity,
		SpecialRequirements: o.SpecialRequirements,
		DeliveryAddress:     o.DeliveryAddress,
	}
}

type UpdateOrder struct {
	Status              *string `json:"status"`
	SpecialRequirements *string `json:"special_requirements"`
	DeliveryAddress     *string `json:"delivery_address"`
}

func (o *UpdateOrder) ValidateUpdateOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Status, validation.In(orderStatusValues()...).Error("must be one of pending, confirmed, shipped, delivered, cancelled")),
	)
}

func (o *UpdateOrder) ToOrderUpdate() model.OrderUpdate {
	update := model.OrderUpdate{
		SpecialRequirements: o.SpecialRequirements,
		DeliveryAddress:     o.DeliveryAddress,
	}
	if o.Status != nil {
		status := model.OrderStatus(*o.Status)
		update.Status = &status
	}
	return update
}
