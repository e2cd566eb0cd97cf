package storefront

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/internal/lock"
	"github.com/smarttech/storefront/model"
)

const (
	customerLockTTL  = 10 * time.Second
	customerLockWait = 3 * time.Second
)

// CreateOrder places an order for customer, creating the customer on first
// purchase. The total is the product price times the quantity. Notifications
// are started once the order is stored and never affect the result.
//
// Parameters:
// - ctx context.Context: request context, used for storage and the customer lock.
// - customer model.Customer: buyer details; matched to an existing customer by email.
// - order model.Order: product id, quantity (0 becomes 1) and delivery notes.
//
// Returns:
// - *model.Order: the stored order with its customer and product attached.
// - error: a NotFound APIError when the product does not exist, or a storage error.
func (s *Storefront) CreateOrder(ctx context.Context, customer model.Customer, order model.Order) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "CreateOrder")
	defer span.End()

	if order.Quantity <= 0 {
		order.Quantity = 1
	}

	product, err := s.datasource.GetProduct(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockCustomer(ctx, customer.Email)
	c, err := s.getOrCreateCustomer(ctx, customer)
	unlock()
	if err != nil {
		return nil, err
	}

	order.CustomerID = c.ID
	order.TotalPrice = product.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))
	order.Status = model.OrderPending

	created, err := s.datasource.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	created.Customer = c
	created.Product = product
	span.SetAttributes(attribute.Int64("order.id", created.ID))

	logrus.WithFields(logrus.Fields{
		"order_id":    created.ID,
		"customer_id": c.ID,
		"total":       created.TotalPrice.String(),
	}).Info("order created")

	s.notify(TaskOrderCreated, model.NewNotificationPayload(*created, *c, product.Name))
	s.SendWebhook(NewWebhook{Event: EventOrderCreated, Payload: created})
	return created, nil
}

// lockCustomer serialises get-or-create for one email across replicas. Without
// redis, or when the lock cannot be taken in time, it proceeds unlocked.
func (s *Storefront) lockCustomer(ctx context.Context, email string) func() {
	if s.locks == nil {
		return func() {}
	}
	m := lock.New(s.locks, customerLockKey(email))
	if err := m.Lock(ctx, customerLockTTL, customerLockWait); err != nil {
		logrus.WithError(err).WithField("key", m.Key()).Warn("customer lock unavailable, continuing without it")
		return func() {}
	}
	return func() {
		if err := m.Unlock(context.Background()); err != nil {
			logrus.WithError(err).WithField("key", m.Key()).Warn("failed to release customer lock")
		}
	}
}

func customerLockKey(email string) string {
	return "lock:customer:" + strings.ToLower(strings.TrimSpace(email))
}

func (s *Storefront) getOrCreateCustomer(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	customer.Email = strings.TrimSpace(customer.Email)
	existing, err := s.datasource.GetCustomerByEmail(ctx, customer.Email)
	if err == nil {
		return existing, nil
	}
	if apierror.CodeOf(err) != apierror.ErrNotFound {
		return nil, err
	}
	return s.datasource.CreateCustomer(ctx, customer)
}

// GetOrder returns one order with its customer and product.
//
// Parameters:
// - ctx context.Context: request context.
// - id int64: the order id.
//
// Returns:
// - *model.Order: the order.
// - error: a NotFound APIError when no such order exists.
func (s *Storefront) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return s.datasource.GetOrder(ctx, id)
}

// ListOrders returns orders newest first, optionally narrowed to one status.
//
// Parameters:
// - ctx context.Context: request context.
// - filter model.OrderFilter: skip, limit and an optional status.
//
// Returns:
// - []model.Order: the page of orders.
// - error: a BadRequest APIError for an unknown status, or a storage error.
func (s *Storefront) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Invalid order status", nil)
	}
	return s.datasource.ListOrders(ctx, filter)
}

// UpdateOrder applies a partial update. A status change is posted to the
// operations chat and every update is sent to the order webhook.
//
// Parameters:
// - ctx context.Context: request context.
// - id int64: the order to update.
// - update model.OrderUpdate: fields to change; nil fields are left alone.
//
// Returns:
// - *model.Order: the updated order.
// - error: BadRequest for an unknown status, NotFound for a missing order.
func (s *Storefront) UpdateOrder(ctx context.Context, id int64, update model.OrderUpdate) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "UpdateOrder")
	defer span.End()

	if update.Status != nil && !update.Status.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Invalid order status", nil)
	}

	order, err := s.datasource.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := order.Status

	if update.Status != nil {
		order.Status = *update.Status
	}
	if update.SpecialRequirements != nil {
		order.SpecialRequirements = *update.SpecialRequirements
	}
	if update.DeliveryAddress != nil {
		order.DeliveryAddress = *update.DeliveryAddress
	}

	if err := s.datasource.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	if order.Status != previous && order.Customer != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"from":     previous,
			"to":       order.Status,
		}).Info("order status changed")
		s.notify(TaskOrderStatus, model.NewNotificationPayload(*order, *order.Customer, ""))
	}
	s.SendWebhook(NewWebhook{Event: EventOrderUpdated, Payload: order})
	return order, nil
}

// DeleteOrder removes an order and emits an order.deleted webhook.
func (s *Storefront) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.datasource.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.SendWebhook(NewWebhook{Event: EventOrderDeleted, Payload: map[string]int64{"id": id}})
	return nil
}
