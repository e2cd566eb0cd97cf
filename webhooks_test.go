package storefront

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedHook struct {
	hook   NewWebhook
	header http.Header
}

func webhookServer(t *testing.T, status int) (*httptest.Server, <-chan capturedHook) {
	t.Helper()
	received := make(chan capturedHook, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var hook NewWebhook
		_ = json.Unmarshal(body, &hook)
		received <- capturedHook{hook: hook, header: r.Header.Clone()}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func TestSendWebhook_DirectPost(t *testing.T) {
	srv, received := webhookServer(t, http.StatusOK)
	h := newHarness(t)
	h.cfg.Notification.Webhook.Url = srv.URL
	h.cfg.Notification.Webhook.Headers = map[string]string{"X-Shop-Signature": "s3cret"}

	h.sf.SendWebhook(NewWebhook{Event: EventOrderDeleted, Payload: map[string]int64{"id": 4}})

	select {
	case got := <-received:
		assert.Equal(t, EventOrderDeleted, got.hook.Event)
		assert.Equal(t, "s3cret", got.header.Get("X-Shop-Signature"))
		assert.Equal(t, map[string]interface{}{"id": float64(4)}, got.hook.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestSendWebhook_NoURL(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	queue := NewQueue(asynq.RedisClientOpt{Addr: mr.Addr()}, cfg.Queue)
	t.Cleanup(func() { queue.Close() })

	h := newHarness(t, WithQueue(queue))
	h.sf.SendWebhook(NewWebhook{Event: EventOrderCreated})

	assert.Empty(t, mr.Keys())
}

func TestSendWebhook_Enqueued(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	queue := NewQueue(asynq.RedisClientOpt{Addr: mr.Addr()}, cfg.Queue)
	t.Cleanup(func() { queue.Close() })

	h := newHarness(t, WithQueue(queue))
	h.cfg.Notification.Webhook.Url = "http://127.0.0.1:1/hook"

	h.sf.SendWebhook(NewWebhook{Event: EventOrderCreated, Payload: map[string]string{"k": "v"}})

	pending, err := mr.List("asynq:{webhooks}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestProcessWebhook(t *testing.T) {
	okSrv, received := webhookServer(t, http.StatusOK)
	h := newHarness(t)
	h.cfg.Notification.Webhook.Url = okSrv.URL

	body, err := json.Marshal(NewWebhook{Event: EventOrderUpdated, Payload: map[string]string{"status": "shipped"}})
	require.NoError(t, err)

	require.NoError(t, h.sf.ProcessWebhook(context.Background(), asynq.NewTask(TaskWebhook, body)))
	assert.Equal(t, EventOrderUpdated, (<-received).hook.Event)

	failSrv, _ := webhookServer(t, http.StatusBadGateway)
	h.cfg.Notification.Webhook.Url = failSrv.URL
	assert.Error(t, h.sf.ProcessWebhook(context.Background(), asynq.NewTask(TaskWebhook, body)))

	err = h.sf.ProcessWebhook(context.Background(), asynq.NewTask(TaskWebhook, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	h.cfg.Notification.Webhook.Url = ""
	assert.NoError(t, h.sf.ProcessWebhook(context.Background(), asynq.NewTask(TaskWebhook, []byte("nope"))))
}
