package model

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/model"
)

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidateCreateProduct(t *testing.T) {
	negative := -1
	tests := []struct {
		name    string
		product CreateProduct
		field   string
	}{
		{name: "Valid", product: CreateProduct{Name: "Board", Price: decimalPtr("185000")}},
		{name: "Missing name", product: CreateProduct{Price: decimalPtr("10")}, field: "name"},
		{name: "Missing price", product: CreateProduct{Name: "Board"}, field: "price"},
		{name: "Zero price", product: CreateProduct{Name: "Board", Price: decimalPtr("0")}, field: "price"},
		{name: "Negative stock", product: CreateProduct{Name: "Board", Price: decimalPtr("1"), StockQuantity: &negative}, field: "stock_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.ValidateCreateProduct()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestCreateProductToProduct(t *testing.T) {
	req := CreateProduct{Name: "  Board ", Price: decimalPtr("99.50")}
	p := req.ToProduct()

	assert.Equal(t, "Board", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("99.5")))
	assert.True(t, p.IsActive)
	assert.Equal(t, 1, p.StockQuantity)

	zero := 0
	req.StockQuantity = &zero
	assert.Equal(t, 0, req.ToProduct().StockQuantity)
}

func TestValidateUpdateProduct(t *testing.T) {
	empty := ""
	assert.NoError(t, (&UpdateProduct{}).ValidateUpdateProduct())
	assert.Error(t, (&UpdateProduct{Name: &empty}).ValidateUpdateProduct())
	assert.Error(t, (&UpdateProduct{Price: decimalPtr("-3")}).ValidateUpdateProduct())

	active := false
	update := (&UpdateProduct{IsActive: &active, Price: decimalPtr("5")}).ToProductUpdate()
	require.NotNil(t, update.IsActive)
	assert.False(t, *update.IsActive)
	assert.Nil(t, update.Name)
}

func TestValidateCreateOrder(t *testing.T) {
	valid := func() CreateOrder {
		return CreateOrder{
			Customer: CustomerInput{
				FullName: "Rahim Uddin",
				Email:    "rahim@example.com",
				Phone:    "01700000000",
			},
			ProductID: 1,
			Quantity:  2,
		}
	}

	o := valid()
	assert.NoError(t, o.ValidateCreateOrder())

	o = valid()
	o.Quantity = 0
	assert.NoError(t, o.ValidateCreateOrder(), "zero quantity falls back to one unit")

	o = valid()
	o.Customer.Email = "not-an-email"
	err := o.ValidateCreateOrder()
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "customer")

	o = valid()
	o.ProductID = 0
	assert.Error(t, o.ValidateCreateOrder())

	o = valid()
	o.Quantity = -4
	assert.Error(t, o.ValidateCreateOrder())
}

func TestCreateOrderToOrder(t *testing.T) {
	o := CreateOrder{
		Customer:        CustomerInput{FullName: " Karim ", Email: " karim@example.com ", Phone: "017"},
		ProductID:       3,
		Quantity:        2,
		DeliveryAddress: "Dhanmondi",
	}
	customer, order := o.ToOrder()
	assert.Equal(t, "Karim", customer.FullName)
	assert.Equal(t, "karim@example.com", customer.Email)
	assert.Equal(t, int64(3), order.ProductID)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, "Dhanmondi", order.DeliveryAddress)
}

func TestValidateUpdateOrder(t *testing.T) {
	shipped := "shipped"
	lost := "lost"

	assert.NoError(t, (&UpdateOrder{}).ValidateUpdateOrder())
	assert.NoError(t, (&UpdateOrder{Status: &shipped}).ValidateUpdateOrder())
	assert.Error(t, (&UpdateOrder{Status: &lost}).ValidateUpdateOrder())

	update := (&UpdateOrder{Status: &shipped}).ToOrderUpdate()
	require.NotNil(t, update.Status)
	assert.Equal(t, model.OrderShipped, *update.Status)
}

func TestValidateChatRequest(t *testing.T) {
	assert.Error(t, (&ChatRequest{}).ValidateChatRequest())
	assert.NoError(t, (&ChatRequest{Message: "দাম কত?", Language: "bn"}).ValidateChatRequest())
}

func TestValidateAdminCreate(t *testing.T) {
	a := AdminCreate{Username: " admin ", Email: "admin@smarttech.example", Password: "s3cret"}
	require.NoError(t, a.ValidateAdminCreate())
	assert.Equal(t, "admin", a.Username)

	a = AdminCreate{Username: "admin", Email: "nope", Password: "s3cret"}
	assert.Error(t, a.ValidateAdminCreate())

	assert.Error(t, (&AdminLogin{Username: "admin"}).ValidateAdminLogin())
}
