package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

func fakeCustomer() model.Customer {
	return model.Customer{
		FullName: gofakeit.Name(),
		Email:    gofakeit.Email(),
		Phone:    gofakeit.Phone(),
		City:     gofakeit.City(),
	}
}

func notFound(msg string) error {
	return apierror.NewAPIError(apierror.ErrNotFound, msg, nil)
}

func TestCreateOrder_NewCustomer(t *testing.T) {
	h := newHarness(t)
	customer := fakeCustomer()
	stored := customer
	stored.ID = 7

	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("GetCustomerByEmail", mock.Anything, customer.Email).Return(nil, notFound("Customer not found"))
	h.ds.On("CreateCustomer", mock.Anything, customer).Return(&stored, nil)
	h.ds.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.CustomerID == 7 &&
			o.Quantity == 2 &&
			o.TotalPrice.Equal(decimal.NewFromInt(5000)) &&
			o.Status == model.OrderPending
	})).Return(&model.Order{
		ID: 42, CustomerID: 7, ProductID: 1, Quantity: 2,
		TotalPrice: decimal.NewFromInt(5000), Status: model.OrderPending,
		DeliveryAddress: "Depot 3", OrderDate: time.Now(),
	}, nil)

	order, err := h.sf.CreateOrder(context.Background(), customer, model.Order{ProductID: 1, Quantity: 2, DeliveryAddress: "Depot 3"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	require.NotNil(t, order.Customer)
	require.NotNil(t, order.Product)
	assert.Equal(t, customer.Email, order.Customer.Email)

	p := receive(t, h.notifier.created)
	assert.Equal(t, int64(42), p.Order.ID)
	assert.Equal(t, "SmartTech Interactive Smart Board RK3588", p.Order.ProductName)
	assert.True(t, p.Order.TotalPrice.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, customer.FullName, p.Customer.FullName)
	h.ds.AssertExpectations(t)
}

func TestCreateOrder_ExistingCustomer(t *testing.T) {
	h := newHarness(t)
	existing := fakeCustomer()
	existing.ID = 3

	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("GetCustomerByEmail", mock.Anything, existing.Email).Return(&existing, nil)
	h.ds.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.CustomerID == 3 && o.Quantity == 1 && o.TotalPrice.Equal(decimal.NewFromInt(2500))
	})).Return(&model.Order{ID: 5, CustomerID: 3, ProductID: 1, Quantity: 1, TotalPrice: decimal.NewFromInt(2500)}, nil)

	// a zero quantity is treated as one board
	_, err := h.sf.CreateOrder(context.Background(), existing, model.Order{ProductID: 1})
	require.NoError(t, err)

	receive(t, h.notifier.created)
	h.ds.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
}

func TestCreateOrder_LocksCustomerEmail(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := newHarness(t, WithLockClient(client))
	c := fakeCustomer()
	c.ID = 4
	key := customerLockKey(c.Email)

	var heldDuringLookup bool
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("GetCustomerByEmail", mock.Anything, c.Email).
		Run(func(mock.Arguments) { heldDuringLookup = mr.Exists(key) }).
		Return(&c, nil)
	h.ds.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&model.Order{ID: 8, CustomerID: 4, ProductID: 1, Quantity: 1, TotalPrice: decimal.NewFromInt(2500)}, nil)

	_, err := h.sf.CreateOrder(context.Background(), c, model.Order{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, heldDuringLookup)
	assert.False(t, mr.Exists(key), "lock is released once the customer is resolved")
	receive(t, h.notifier.created)
}

func TestCustomerLockKeyIgnoresCase(t *testing.T) {
	assert.Equal(t, customerLockKey("Buyer@Example.com "), customerLockKey("buyer@example.com"))
}

func TestCreateOrder_ProductMissing(t *testing.T) {
	h := newHarness(t)
	h.ds.On("GetProduct", mock.Anything, int64(99)).Return(nil, notFound("Product not found"))

	_, err := h.sf.CreateOrder(context.Background(), fakeCustomer(), model.Order{ProductID: 99, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
	assert.Equal(t, "Product not found", apierror.MessageOf(err))

	h.ds.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	h.ds.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	assertNothingReceived(t, h.notifier.created)
}

func TestCreateOrder_StorageFailure(t *testing.T) {
	h := newHarness(t)
	c := fakeCustomer()
	c.ID = 1
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("GetCustomerByEmail", mock.Anything, c.Email).Return(&c, nil)
	h.ds.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create order", errors.New("connection reset")))

	_, err := h.sf.CreateOrder(context.Background(), c, model.Order{ProductID: 1, Quantity: 1})
	assert.Equal(t, apierror.ErrInternalServer, apierror.CodeOf(err))
	assertNothingReceived(t, h.notifier.created)
}

func TestCreateOrder_EnqueuesNotification(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	queue := NewQueue(asynq.RedisClientOpt{Addr: mr.Addr()}, cfg.Queue)
	t.Cleanup(func() { queue.Close() })

	h := newHarness(t, WithQueue(queue))
	c := fakeCustomer()
	c.ID = 1
	h.ds.On("GetProduct", mock.Anything, int64(1)).Return(sampleProduct(), nil)
	h.ds.On("GetCustomerByEmail", mock.Anything, c.Email).Return(&c, nil)
	h.ds.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&model.Order{ID: 11, CustomerID: 1, ProductID: 1, Quantity: 1, TotalPrice: decimal.NewFromInt(2500)}, nil)

	_, err := h.sf.CreateOrder(context.Background(), c, model.Order{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, mr.Keys())
	pending, err := mr.List("asynq:{notifications}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assertNothingReceived(t, h.notifier.created)
}

func TestProcessNotification(t *testing.T) {
	h := newHarness(t)
	p := model.NotificationPayload{Order: model.OrderSnapshot{ID: 8, Status: model.OrderShipped}}
	body, err := json.Marshal(p)
	require.NoError(t, err)

	require.NoError(t, h.sf.ProcessNotification(context.Background(), asynq.NewTask(TaskOrderCreated, body)))
	assert.Equal(t, int64(8), receive(t, h.notifier.created).Order.ID)

	require.NoError(t, h.sf.ProcessNotification(context.Background(), asynq.NewTask(TaskOrderStatus, body)))
	assert.Equal(t, model.OrderShipped, receive(t, h.notifier.status).Order.Status)

	err = h.sf.ProcessNotification(context.Background(), asynq.NewTask(TaskOrderCreated, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h.sf.ProcessNotification(context.Background(), asynq.NewTask("notification:unknown", body))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func joinedOrder(status model.OrderStatus) *model.Order {
	c := fakeCustomer()
	c.ID = 2
	p := sampleProduct()
	return &model.Order{
		ID: 1, CustomerID: 2, ProductID: p.ID, Quantity: 1,
		TotalPrice: p.Price, Status: status, OrderDate: time.Now(),
		Customer: &c, Product: p,
	}
}

func TestUpdateOrder_StatusChangeNotifies(t *testing.T) {
	h := newHarness(t)
	h.ds.On("GetOrder", mock.Anything, int64(1)).Return(joinedOrder(model.OrderPending), nil)
	h.ds.On("UpdateOrder", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.Status == model.OrderShipped
	})).Return(nil)

	shipped := model.OrderShipped
	order, err := h.sf.UpdateOrder(context.Background(), 1, model.OrderUpdate{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, order.Status)

	p := receive(t, h.notifier.status)
	assert.Equal(t, model.OrderShipped, p.Order.Status)
	assert.Equal(t, "SmartTech Interactive Smart Board RK3588", p.Order.ProductName)
}

func TestUpdateOrder_SameStatusIsSilent(t *testing.T) {
	h := newHarness(t)
	h.ds.On("GetOrder", mock.Anything, int64(1)).Return(joinedOrder(model.OrderPending), nil)
	h.ds.On("UpdateOrder", mock.Anything, mock.Anything).Return(nil)

	note := "call before delivery"
	pending := model.OrderPending
	order, err := h.sf.UpdateOrder(context.Background(), 1, model.OrderUpdate{Status: &pending, SpecialRequirements: &note})
	require.NoError(t, err)
	assert.Equal(t, note, order.SpecialRequirements)
	assertNothingReceived(t, h.notifier.status)
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	h := newHarness(t)
	bogus := model.OrderStatus("lost")

	_, err := h.sf.UpdateOrder(context.Background(), 1, model.OrderUpdate{Status: &bogus})
	assert.Equal(t, apierror.ErrBadRequest, apierror.CodeOf(err))
	h.ds.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	h := newHarness(t)
	h.ds.On("GetOrder", mock.Anything, int64(3)).Return(nil, notFound("Order not found"))

	_, err := h.sf.UpdateOrder(context.Background(), 3, model.OrderUpdate{})
	assert.Equal(t, "Order not found", apierror.MessageOf(err))
}

func TestListOrders(t *testing.T) {
	h := newHarness(t)
	filter := model.OrderFilter{Limit: 100, Status: model.OrderPending}
	h.ds.On("ListOrders", mock.Anything, filter).Return([]model.Order{*joinedOrder(model.OrderPending)}, nil)

	orders, err := h.sf.ListOrders(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = h.sf.ListOrders(context.Background(), model.OrderFilter{Status: "lost"})
	assert.Equal(t, apierror.ErrBadRequest, apierror.CodeOf(err))
}

func TestDeleteOrder(t *testing.T) {
	h := newHarness(t)
	h.ds.On("DeleteOrder", mock.Anything, int64(1)).Return(nil)
	h.ds.On("DeleteOrder", mock.Anything, int64(2)).Return(notFound("Order not found"))

	require.NoError(t, h.sf.DeleteOrder(context.Background(), 1))
	err := h.sf.DeleteOrder(context.Background(), 2)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}
