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
	"embed"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/database"
	"github.com/smarttech/storefront/internal/assistant"
	"github.com/smarttech/storefront/internal/auth"
	"github.com/smarttech/storefront/internal/cache"
	"github.com/smarttech/storefront/internal/files"
	"github.com/smarttech/storefront/internal/notification"
	redis_db "github.com/smarttech/storefront/internal/redis-db"
	"github.com/smarttech/storefront/model"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

var tracer = otel.Tracer("storefront.service")

// Assistant answers a customer chat message. It always returns some text.
type Assistant interface {
	GetResponse(ctx context.Context, message, language string) string
}

// Notifier delivers order events to the configured channels.
type Notifier interface {
	Dispatch(ctx context.Context, p model.NotificationPayload)
	DispatchStatusUpdate(ctx context.Context, p model.NotificationPayload)
}

// Storefront holds the services behind the shop API.
type Storefront struct {
	cfg        *config.Configuration
	datasource database.IDataSource
	redis      *redis_db.Redis
	cache      cache.Cache
	queue      *Queue
	locks      redis.UniversalClient
	assistant  Assistant
	notifier   Notifier
	media      *files.Store
	tokens     *auth.Issuer
	httpClient *http.Client
}

// Option overrides one dependency NewStorefront would otherwise build from
// the configuration.
type Option func(*Storefront)

// WithAssistant sets the chat assistant.
func WithAssistant(a Assistant) Option {
	return func(s *Storefront) { s.assistant = a }
}

// WithNotifier sets the order notification dispatcher.
func WithNotifier(n Notifier) Option {
	return func(s *Storefront) { s.notifier = n }
}

// WithCache sets the product cache.
func WithCache(c cache.Cache) Option {
	return func(s *Storefront) { s.cache = c }
}

// WithQueue sets the task queue used for notifications and webhooks.
func WithQueue(q *Queue) Option {
	return func(s *Storefront) { s.queue = q }
}

// WithLockClient sets the redis used for cross-replica locks.
func WithLockClient(c redis.UniversalClient) Option {
	return func(s *Storefront) { s.locks = c }
}

// WithMediaStore sets where uploads are written.
func WithMediaStore(m *files.Store) Option {
	return func(s *Storefront) { s.media = m }
}

// WithHTTPClient sets the client used for direct webhook delivery.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Storefront) { s.httpClient = c }
}

// NewStorefront wires the services from the loaded configuration. Redis is
// optional: without it products are read straight from the database and
// notifications run in-process.
func NewStorefront(db database.IDataSource, opts ...Option) (*Storefront, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	s := &Storefront{
		cfg:        cfg,
		datasource: db,
		media:      files.NewStore(cfg.Uploads.Dir),
		tokens:     auth.NewIssuer(cfg.Auth.SecretKey, time.Duration(cfg.Auth.TokenExpiryMinutes)*time.Minute),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	// explicit options win over the config-driven defaults below
	for _, opt := range opts {
		opt(s)
	}

	if s.assistant == nil {
		s.assistant = assistant.NewEngine(cfg.Assistant)
	}
	if s.notifier == nil {
		s.notifier = notification.NewFanOutFromConfig(cfg)
	}
	if cfg.Redis.Dns != "" && (s.cache == nil || s.queue == nil || s.locks == nil) {
		r, err := redis_db.NewRedisClient(cfg.Redis.Dns, cfg.Redis.SkipTLSVerify)
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, running without product cache, task queue and customer locks")
		} else {
			s.redis = r
			if s.cache == nil {
				s.cache = cache.NewRedisCache(r.Client())
			}
			if s.queue == nil {
				s.queue = NewQueue(r.AsynqOpt(), cfg.Queue)
			}
			if s.locks == nil {
				s.locks = r.Client()
			}
		}
	}
	return s, nil
}

// Config returns the configuration the services were built with.
func (s *Storefront) Config() *config.Configuration {
	return s.cfg
}

// Tokens returns the admin token issuer.
func (s *Storefront) Tokens() *auth.Issuer {
	return s.tokens
}

// Media returns the upload store.
func (s *Storefront) Media() *files.Store {
	return s.media
}

// Ping checks the database connection.
func (s *Storefront) Ping(ctx context.Context) error {
	return s.datasource.Ping(ctx)
}

// Close releases the queue client and the redis connection.
func (s *Storefront) Close() error {
	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close task queue")
		}
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
