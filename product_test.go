package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/internal/cache"
	"github.com/smarttech/storefront/model"
)

func sampleProduct() *model.Product {
	return &model.Product{
		ID:             1,
		Name:           "SmartTech Interactive Smart Board RK3588",
		Price:          decimal.NewFromInt(2500),
		Specifications: map[string]interface{}{"processor": "RK3588"},
		Images:         []string{"/static/images/a.jpg"},
		IsActive:       true,
		StockQuantity:  50,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func newRedisCache(t *testing.T) cache.Cache {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCache(client)
}

func TestGetProduct_ReadsThroughCache(t *testing.T) {
	h := newHarness(t, WithCache(newRedisCache(t)))
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil).Once()

	first, err := h.sf.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	second, err := h.sf.GetProduct(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.Price.Equal(second.Price))
	h.ds.AssertNumberOfCalls(t, "GetProduct", 1)
}

func TestGetProduct_WithoutCache(t *testing.T) {
	h := newHarness(t)
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)

	_, err := h.sf.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	_, err = h.sf.GetProduct(context.Background(), 1)
	require.NoError(t, err)

	h.ds.AssertNumberOfCalls(t, "GetProduct", 2)
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newHarness(t, WithCache(newRedisCache(t)))
	h.ds.On("GetProduct", mock.Anything, int64(9)).
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Product not found", nil))

	_, err := h.sf.GetProduct(context.Background(), 9)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}

func TestUpdateProduct_InvalidatesCache(t *testing.T) {
	h := newHarness(t, WithCache(newRedisCache(t)))
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("UpdateProduct", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

	_, err := h.sf.GetProduct(context.Background(), 1)
	require.NoError(t, err)

	price := decimal.NewFromInt(2300)
	stock := 40
	updated, err := h.sf.UpdateProduct(context.Background(), 1, model.ProductUpdate{Price: &price, StockQuantity: &stock})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 40, updated.StockQuantity)
	assert.Equal(t, "SmartTech Interactive Smart Board RK3588", updated.Name)

	_, err = h.sf.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	// the initial read, the update's read, and the read after invalidation
	h.ds.AssertNumberOfCalls(t, "GetProduct", 3)
}

func TestUpdateProductMedia(t *testing.T) {
	h := newHarness(t)
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.VideoURL == "/static/videos/demo.mp4" && len(p.Images) == 1
	})).Return(nil)

	video := "/static/videos/demo.mp4"
	p, err := h.sf.UpdateProductMedia(context.Background(), 1, nil, &video)
	require.NoError(t, err)
	assert.Equal(t, []string{"/static/images/a.jpg"}, p.Images)
	assert.Equal(t, video, p.VideoURL)
	h.ds.AssertExpectations(t)
}

func TestListProducts(t *testing.T) {
	h := newHarness(t)
	h.ds.On("ListActiveProducts", mock.Anything, 0, 100).Return([]model.Product{*sampleProduct()}, nil)

	products, err := h.sf.ListProducts(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
