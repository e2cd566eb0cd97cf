package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/database/mocks"
	"github.com/smarttech/storefront/model"
)

type fakeAssistant struct {
	reply    string
	messages []string
	langs    []string
}

func (f *fakeAssistant) GetResponse(_ context.Context, message, language string) string {
	f.messages = append(f.messages, message)
	f.langs = append(f.langs, language)
	return f.reply
}

type recordingNotifier struct {
	created chan model.NotificationPayload
	status  chan model.NotificationPayload
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		created: make(chan model.NotificationPayload, 4),
		status:  make(chan model.NotificationPayload, 4),
	}
}

func (r *recordingNotifier) Dispatch(_ context.Context, p model.NotificationPayload) {
	r.created <- p
}

func (r *recordingNotifier) DispatchStatusUpdate(_ context.Context, p model.NotificationPayload) {
	r.status <- p
}

func receive(t *testing.T, ch <-chan model.NotificationPayload) model.NotificationPayload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not dispatched")
		return model.NotificationPayload{}
	}
}

func assertNothingReceived(t *testing.T, ch <-chan model.NotificationPayload) {
	t.Helper()
	select {
	case p := <-ch:
		t.Fatalf("unexpected notification for order %d", p.Order.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func testConfig(t *testing.T) *config.Configuration {
	cfg := &config.Configuration{
		ProjectName: "storefront-test",
		Auth:        config.AuthConfig{SecretKey: "test-secret", TokenExpiryMinutes: 30},
		Uploads:     config.UploadConfig{Dir: t.TempDir()},
		Queue:       config.QueueConfig{NotificationQueue: "notifications", WebhookQueue: "webhooks"},
	}
	config.MockConfig(cfg)
	return cfg
}

type testHarness struct {
	sf        *Storefront
	ds        *mocks.MockDataSource
	assistant *fakeAssistant
	notifier  *recordingNotifier
	cfg       *config.Configuration
}

func newHarness(t *testing.T, opts ...Option) *testHarness {
	t.Helper()
	cfg := testConfig(t)
	h := &testHarness{
		ds:        &mocks.MockDataSource{},
		assistant: &fakeAssistant{reply: "Hello from SmartTech"},
		notifier:  newRecordingNotifier(),
		cfg:       cfg,
	}
	base := []Option{WithAssistant(h.assistant), WithNotifier(h.notifier)}
	sf, err := NewStorefront(h.ds, append(base, opts...)...)
	require.NoError(t, err)
	h.sf = sf
	return h
}
