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

package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/model"
)

const (
	TaskOrderCreated = "notification:order_created"
	TaskOrderStatus  = "notification:order_status"
	TaskWebhook      = "webhook:deliver"
)

// Queue hands notification and webhook work to the asynq workers.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
	cfg       config.QueueConfig
}

// NewQueue creates the asynq client and inspector on the given redis.
func NewQueue(opt asynq.RedisClientOpt, cfg config.QueueConfig) *Queue {
	return &Queue{
		Client:    asynq.NewClient(opt),
		Inspector: asynq.NewInspector(opt),
		cfg:       cfg,
	}
}

// EnqueueNotification schedules one order event for the notification workers.
func (q *Queue) EnqueueNotification(ctx context.Context, taskType string, p model.NotificationPayload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, payload)
	info, err := q.Client.EnqueueContext(ctx, task,
		asynq.Queue(q.cfg.NotificationQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	logrus.WithFields(logrus.Fields{
		"task_id":  info.ID,
		"order_id": p.Order.ID,
		"type":     taskType,
	}).Info("notification enqueued")
	return nil
}

// EnqueueWebhook schedules an outbound webhook; delivery is retried by asynq.
func (q *Queue) EnqueueWebhook(ctx context.Context, hook NewWebhook) error {
	payload, err := json.Marshal(hook)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskWebhook, payload)
	if _, err := q.Client.EnqueueContext(ctx, task, asynq.Queue(q.cfg.WebhookQueue), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue webhook %s: %w", hook.Event, err)
	}
	return nil
}

// Pending reports how many tasks wait in the notification and webhook queues.
func (q *Queue) Pending() map[string]int {
	pending := make(map[string]int, 2)
	for _, name := range []string{q.cfg.NotificationQueue, q.cfg.WebhookQueue} {
		info, err := q.Inspector.GetQueueInfo(name)
		if err != nil {
			// a queue that never received a task does not exist yet
			pending[name] = 0
			continue
		}
		pending[name] = info.Pending
	}
	return pending
}

// Close releases the inspector and the client connections.
func (q *Queue) Close() error {
	if err := q.Inspector.Close(); err != nil {
		return err
	}
	return q.Client.Close()
}

// notify runs a notification through the queue, or in-process when there is
// no queue or enqueueing fails. It never blocks the caller on delivery.
func (s *Storefront) notify(taskType string, p model.NotificationPayload) {
	if s.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.queue.EnqueueNotification(ctx, taskType, p)
		cancel()
		if err == nil {
			return
		}
		logrus.WithError(err).WithField("order_id", p.Order.ID).Warn("falling back to in-process notification")
	}
	go s.runNotification(taskType, p)
}

func (s *Storefront) runNotification(taskType string, p model.NotificationPayload) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("order_id", p.Order.ID).Errorf("notification panicked: %v", r)
		}
	}()
	ctx := context.Background()
	switch taskType {
	case TaskOrderStatus:
		s.notifier.DispatchStatusUpdate(ctx, p)
	default:
		s.notifier.Dispatch(ctx, p)
	}
}

// ProcessNotification is the worker handler for both notification task types.
func (s *Storefront) ProcessNotification(ctx context.Context, task *asynq.Task) error {
	var p model.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	ctx, span := tracer.Start(ctx, "ProcessNotification")
	defer span.End()

	switch task.Type() {
	case TaskOrderCreated:
		s.notifier.Dispatch(ctx, p)
	case TaskOrderStatus:
		s.notifier.DispatchStatusUpdate(ctx, p)
	default:
		return fmt.Errorf("unknown notification task %q: %w", task.Type(), asynq.SkipRetry)
	}
	return nil
}
