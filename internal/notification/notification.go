// Package notification delivers order events to the shop owner and the
// customer. Delivery is best effort: failures are logged per channel and
// never reach the caller.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/internal/metrics"
	"github.com/smarttech/storefront/model"
)

// Mailer sends the two order emails.
type Mailer interface {
	SendAdminNotification(ctx context.Context, p model.NotificationPayload) error
	SendCustomerConfirmation(ctx context.Context, p model.NotificationPayload) error
}

// Messenger posts order events to the operations chat.
type Messenger interface {
	SendOrderNotification(ctx context.Context, p model.NotificationPayload) error
	SendStatusUpdate(ctx context.Context, p model.NotificationPayload) error
}

// DefaultChannelTimeout is the budget of a single delivery when none is set.
const DefaultChannelTimeout = 65 * time.Second

// FanOut sends each event to every configured channel. A nil channel is skipped.
type FanOut struct {
	mailer    Mailer
	messenger Messenger
	timeout   time.Duration
}

// FanOutOption customises a FanOut built by NewFanOut.
type FanOutOption func(*FanOut)

// WithChannelTimeout sets the budget each delivery gets. Non-positive values
// keep DefaultChannelTimeout.
func WithChannelTimeout(d time.Duration) FanOutOption {
	return func(f *FanOut) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewFanOut creates a dispatcher over the given channels.
//
// Parameters:
// - mailer: sends the order emails. May be nil to disable email.
// - messenger: posts to the operations chat. May be nil to disable it.
// - opts: optional FanOutOption values.
//
// Returns:
// - *FanOut: the dispatcher.
func NewFanOut(mailer Mailer, messenger Messenger, opts ...FanOutOption) *FanOut {
	f := &FanOut{mailer: mailer, messenger: messenger, timeout: DefaultChannelTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dispatch sends the admin email, the customer email and the chat message
// for a new order. The email pair runs first; the chat message is attempted
// whatever happened to the emails.
//
// Every delivery runs under its own timeout, detached from ctx's deadline, so
// a stalled channel cannot spend the budget of the ones after it. Values
// carried by ctx (trace spans) are kept.
func (f *FanOut) Dispatch(ctx context.Context, p model.NotificationPayload) {
	log := logrus.WithField("order_id", p.Order.ID)

	if err := f.sendEmails(ctx, p); err != nil {
		log.WithError(err).Error("order email notification failed")
		NotifyError(fmt.Errorf("order #%d email notification: %w", p.Order.ID, err))
	}

	if f.messenger != nil {
		if err := f.deliver(ctx, "telegram", func(ctx context.Context) error { return f.messenger.SendOrderNotification(ctx, p) }); err != nil {
			log.WithError(err).Error("telegram order notification failed")
			NotifyError(fmt.Errorf("order #%d telegram notification: %w", p.Order.ID, err))
		}
	}
}

// DispatchStatusUpdate posts a status change to the operations chat.
func (f *FanOut) DispatchStatusUpdate(ctx context.Context, p model.NotificationPayload) {
	if f.messenger == nil {
		return
	}
	if err := f.deliver(ctx, "telegram_status", func(ctx context.Context) error { return f.messenger.SendStatusUpdate(ctx, p) }); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id": p.Order.ID,
			"status":   p.Order.Status,
		}).Error("telegram status update failed")
	}
}

// sendEmails attempts both emails; the admin failure does not stop the
// customer confirmation.
func (f *FanOut) sendEmails(ctx context.Context, p model.NotificationPayload) error {
	if f.mailer == nil {
		return nil
	}
	adminErr := f.deliver(ctx, "email_admin", func(ctx context.Context) error { return f.mailer.SendAdminNotification(ctx, p) })
	if adminErr != nil {
		adminErr = fmt.Errorf("admin notification: %w", adminErr)
	}
	customerErr := f.deliver(ctx, "email_customer", func(ctx context.Context) error {
		return f.mailer.SendCustomerConfirmation(ctx, p)
	})
	if customerErr != nil {
		customerErr = fmt.Errorf("customer confirmation to %s: %w", p.Customer.Email, customerErr)
	}
	return errors.Join(adminErr, customerErr)
}

// deliver runs one channel send inside its own boundary, panics included,
// with a fresh timeout of f.timeout.
func (f *FanOut) deliver(ctx context.Context, channel string, send func(context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", channel, r)
		}
		metrics.RecordDelivery(channel, err == nil)
	}()
	return send(ctx)
}
