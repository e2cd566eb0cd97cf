/*
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
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/internal/request"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// NewWebhook is the body posted to the configured order webhook.
type NewWebhook struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// SendWebhook queues an order event for the outbound webhook. Without a
// queue it is posted once from a goroutine. Nothing happens when no webhook
// url is configured.
func (s *Storefront) SendWebhook(hook NewWebhook) {
	if s.cfg.Notification.Webhook.Url == "" {
		return
	}
	if s.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.queue.EnqueueWebhook(ctx, hook)
		if err == nil {
			return
		}
		logrus.WithError(err).WithField("event", hook.Event).Warn("webhook enqueue failed, posting directly")
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.processHTTP(ctx, hook); err != nil {
			logrus.WithError(err).WithField("event", hook.Event).Error("webhook delivery failed")
		}
	}()
}

func (s *Storefront) processHTTP(ctx context.Context, hook NewWebhook) error {
	webhook := s.cfg.Notification.Webhook
	if _, err := request.PostJSON(ctx, s.httpClient, webhook.Url, webhook.Headers, hook, nil); err != nil {
		return fmt.Errorf("post %s webhook: %w", hook.Event, err)
	}
	logrus.WithField("event", hook.Event).Info("webhook notification sent")
	return nil
}

// ProcessWebhook is the worker handler for queued webhooks. A failed post is
// returned so asynq retries it.
func (s *Storefront) ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	if s.cfg.Notification.Webhook.Url == "" {
		return nil
	}
	var hook NewWebhook
	if err := json.Unmarshal(task.Payload(), &hook); err != nil {
		return fmt.Errorf("decode webhook payload: %v: %w", err, asynq.SkipRetry)
	}
	logrus.WithField("event", hook.Event).Info("processing webhook")
	return s.processHTTP(ctx, hook)
}
