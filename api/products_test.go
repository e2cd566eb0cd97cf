package api

import (
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

func boardProduct(id int64) *model.Product {
	return &model.Product{
		ID:            id,
		Name:          "Interactive Smart Board RK3588",
		Price:         decimal.NewFromInt(185000),
		IsActive:      true,
		StockQuantity: 5,
		Images:        []string{"/static/images/board.png"},
	}
}

func TestListProducts(t *testing.T) {
	ta := setupAPI(t)
	ta.ds.On("ListActiveProducts", mock.Anything, 0, 100).Return([]model.Product{*boardProduct(1)}, nil)
	ta.ds.On("ListActiveProducts", mock.Anything, 10, 5).Return([]model.Product{}, nil)

	for _, path := range []string{"/api/products", "/api/products/"} {
		w := ta.do(t, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"price":185000`)
	}

	w := ta.do(t, http.MethodGet, "/api/products?skip=10&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = ta.do(t, http.MethodGet, "/api/products?skip=-1", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = ta.do(t, http.MethodGet, "/api/products?limit=abc", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetProduct(t *testing.T) {
	ta := setupAPI(t)
	ta.ds.On("GetProduct", mock.Anything, int64(1)).Return(boardProduct(1), nil)
	ta.ds.On("GetProduct", mock.Anything, int64(404)).
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Product not found", nil))

	w := ta.do(t, http.MethodGet, "/api/products/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Interactive Smart Board RK3588", decode(t, w)["name"])

	w = ta.do(t, http.MethodGet, "/api/products/404", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w)["detail"])

	w = ta.do(t, http.MethodGet, "/api/products/abc", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateProduct(t *testing.T) {
	ta := setupAPI(t)
	token := ta.adminToken(t)
	name := gofakeit.ProductName()

	ta.ds.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == name && p.IsActive && p.StockQuantity == 1 && p.Price.Equal(decimal.RequireFromString("1499.99"))
	})).Return(&model.Product{ID: 7, Name: name, Price: decimal.RequireFromString("1499.99"), IsActive: true, StockQuantity: 1}, nil)

	w := ta.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name":  name,
		"price": 1499.99,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, 1499.99, body["price"])
	ta.ds.AssertExpectations(t)
}

func TestCreateProductValidation(t *testing.T) {
	ta := setupAPI(t)
	token := ta.adminToken(t)

	w := ta.do(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "Board"}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	detail, ok := decode(t, w)["detail"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, detail, "price")

	w = ta.do(t, http.MethodPost, "/api/products", "not an object", token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	ta.ds.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestUpdateProduct(t *testing.T) {
	ta := setupAPI(t)
	token := ta.adminToken(t)

	ta.ds.On("GetProduct", mock.Anything, int64(1)).Return(boardProduct(1), nil)
	ta.ds.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.StockQuantity == 0 && !p.IsActive
	})).Return(nil)

	w := ta.do(t, http.MethodPut, "/api/products/1", map[string]interface{}{
		"stock_quantity": 0,
		"is_active":      false,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, false, body["is_active"])
	assert.Equal(t, float64(0), body["stock_quantity"])
}
