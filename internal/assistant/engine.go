// Package assistant answers shopper questions through a remote chat
// completion API. Requests rotate across configured API keys and models so
// that rate limits, revoked keys and retired models degrade into a canned
// apology instead of an error.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/internal/metrics"
)

var (
	// ErrNoCredentials means no API key is configured; no request is sent.
	ErrNoCredentials = errors.New("assistant: no valid API keys available")
	// ErrExhausted means every model and key slot was used up without a
	// terminal answer. No response body exists in this case.
	ErrExhausted = errors.New("assistant: all model and key combinations exhausted")
	// ErrUnexpectedResponse means a 2xx body lacked choices[0].message.content.
	ErrUnexpectedResponse = errors.New("assistant: unexpected completion response shape")
)

// StatusError is a terminal non-2xx answer from the completion endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("assistant: completion endpoint returned %d", e.StatusCode)
}

const maxBodyBytes = 1 << 20

// Completion is the terminal answer received from the endpoint.
type Completion struct {
	StatusCode int
	Body       []byte
	Model      string
}

// Text extracts choices[0].message.content. A null or blank content is
// returned as "" without error.
func (c *Completion) Text() (string, error) {
	if c.StatusCode < 200 || c.StatusCode > 299 {
		return "", &StatusError{StatusCode: c.StatusCode, Body: string(c.Body)}
	}
	if !gjson.ValidBytes(c.Body) {
		return "", ErrUnexpectedResponse
	}
	content := gjson.GetBytes(c.Body, "choices.0.message.content")
	if !content.Exists() {
		return "", ErrUnexpectedResponse
	}
	return content.String(), nil
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Option customises an Engine built by NewEngine.
type Option func(*Engine)

// WithHTTPClient sets the client used for completion requests. Each attempt
// still gets its own timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.client = c }
}

// WithSleeper replaces the backoff wait, tests use it to skip real delays.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// Engine is safe for concurrent use. The two cursors are shared by all
// calls; each call works on its own RetryState and writes rotations back,
// last writer wins.
type Engine struct {
	credentials CredentialPool
	models      ModelPool
	endpoint    string
	maxTokens   int
	temperature float64
	maxRetries  int
	passes      int
	timeout     time.Duration

	client *http.Client
	sleep  Sleeper

	credentialCursor atomic.Int64
	modelCursor      atomic.Int64
}

// NewEngine creates a completion engine over the configured keys and models.
// Unset fields of cfg fall back to the configuration defaults (30s per
// attempt, 3 retries, two sweep passes), so a zero timeout never fails every
// attempt at once.
//
// Parameters:
// - cfg: keys, models, endpoint and generation parameters.
// - opts: optional Option values such as WithHTTPClient or WithSleeper.
//
// Returns:
// - *Engine: an engine with both cursors at zero.
func NewEngine(cfg config.AssistantConfig, opts ...Option) *Engine {
	cfg = cfg.WithDefaults()
	e := &Engine{
		credentials: CredentialPool(cfg.APIKeys()),
		models:      newModelPool(cfg.Models()),
		endpoint:    cfg.BaseURL,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		passes:      cfg.SweepPasses,
		timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		client:      &http.Client{},
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}

	logrus.WithFields(logrus.Fields{
		"keys":   len(e.credentials.Valid()),
		"models": []string(e.models),
	}).Info("chat assistant configured")
	return e
}

// CredentialCursor is the index of the key the next call starts with.
func (e *Engine) CredentialCursor() int64 {
	return wrap(e.credentialCursor.Load(), len(e.credentials.Valid()))
}

// ModelCursor is the index of the model the next call starts with.
func (e *Engine) ModelCursor() int64 {
	return wrap(e.modelCursor.Load(), e.models.Len())
}

type state int

const (
	stateTryModel state = iota
	stateTryCredential
	stateAttempt
	stateRotateModel
	stateRotateCredential
	stateExhausted
	stateSuccess
)

// RetryState is the per-call view of the rotation.
type RetryState struct {
	Credential int64
	Model      int64
	Attempt    int

	modelSlots      int
	credentialSlots int
	tried           map[string]struct{}
	currentModel    string
	backoff         backoff.BackOff
}

func (e *Engine) newRetryState(keyCount int) *RetryState {
	return &RetryState{
		Credential: wrap(e.credentialCursor.Load(), keyCount),
		Model:      wrap(e.modelCursor.Load(), e.models.Len()),
		tried:      make(map[string]struct{}, e.models.Len()),
	}
}

// newBackOff yields 1s, 2s, 4s, ... with no jitter.
func newBackOff() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     time.Second,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Minute,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

type outcome string

const (
	outcomeTerminal         outcome = "terminal"
	outcomeModelRateLimited outcome = "model_rate_limited"
	outcomeRateLimited      outcome = "rate_limited"
	outcomeUnauthorized     outcome = "unauthorized"
	outcomeModelNotFound    outcome = "model_not_found"
	outcomeTransport        outcome = "transport_error"
)

func classify(res *Completion, err error) outcome {
	if err != nil {
		return outcomeTransport
	}
	switch res.StatusCode {
	case http.StatusTooManyRequests:
		// the provider marks the whole model as unavailable, not just this key
		if gjson.ValidBytes(res.Body) && strings.Contains(strings.ToLower(string(res.Body)), "rate-limited") {
			return outcomeModelRateLimited
		}
		return outcomeRateLimited
	case http.StatusUnauthorized:
		return outcomeUnauthorized
	case http.StatusNotFound:
		return outcomeModelNotFound
	default:
		return outcomeTerminal
	}
}

// Complete runs the rotation until a terminal answer arrives. It returns
// ErrExhausted when slots run out and the transport error when retries on a
// single pair run out.
func (e *Engine) Complete(ctx context.Context, payload Payload) (*Completion, error) {
	keys := e.credentials.Valid()
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}
	if e.models.Len() == 0 {
		return nil, ErrExhausted
	}

	rs := e.newRetryState(len(keys))
	var result *Completion
	st := stateTryModel

	for {
		switch st {
		case stateTryModel:
			if rs.modelSlots >= e.passes*e.models.Len() {
				st = stateExhausted
				continue
			}
			rs.modelSlots++
			model := e.models.At(rs.Model)
			if _, seen := rs.tried[model]; seen {
				// already tried in this call, skipping still costs a slot
				st = stateRotateModel
				continue
			}
			rs.tried[model] = struct{}{}
			rs.currentModel = model
			rs.credentialSlots = 0
			st = stateTryCredential

		case stateTryCredential:
			if rs.credentialSlots >= e.passes*len(keys) {
				st = stateTryModel
				continue
			}
			rs.credentialSlots++
			rs.Attempt = 0
			rs.backoff = newBackOff()
			st = stateAttempt

		case stateAttempt:
			key := keys[rs.Credential]
			res, err := e.send(ctx, key, rs.currentModel, payload)
			oc := classify(res, err)
			metrics.RecordCompletionAttempt(rs.currentModel, string(oc))

			log := logrus.WithFields(logrus.Fields{
				"model":   rs.currentModel,
				"key":     rs.Credential + 1,
				"attempt": rs.Attempt + 1,
				"outcome": oc,
			})

			switch oc {
			case outcomeTerminal:
				result = res
				st = stateSuccess
			case outcomeModelRateLimited:
				log.Warn("model is rate-limited upstream, trying next model")
				st = stateRotateModel
			case outcomeModelNotFound:
				log.Warn("model not found, trying next model")
				st = stateRotateModel
			case outcomeUnauthorized:
				log.Warn("API key rejected, trying next key")
				st = stateRotateCredential
			case outcomeRateLimited:
				if rs.Attempt >= e.maxRetries {
					log.Warn("rate limited, retries used up, trying next key")
					st = stateRotateCredential
					continue
				}
				wait := rs.backoff.NextBackOff() + time.Duration(rs.Attempt)*100*time.Millisecond
				log.WithField("wait", wait).Warn("rate limited, backing off")
				if err := e.sleep(ctx, wait); err != nil {
					return nil, err
				}
				rs.Attempt++
			case outcomeTransport:
				if rs.Attempt >= e.maxRetries {
					log.WithError(err).Error("completion request failed, retries used up")
					return nil, fmt.Errorf("completion request with model %s: %w", rs.currentModel, err)
				}
				wait := rs.backoff.NextBackOff()
				log.WithError(err).WithField("wait", wait).Warn("completion request failed, backing off")
				if err := e.sleep(ctx, wait); err != nil {
					return nil, err
				}
				rs.Attempt++
			}

		case stateRotateModel:
			rs.Model = wrap(rs.Model+1, e.models.Len())
			e.modelCursor.Store(rs.Model)
			st = stateTryModel

		case stateRotateCredential:
			rs.Credential = wrap(rs.Credential+1, len(keys))
			e.credentialCursor.Store(rs.Credential)
			st = stateTryCredential

		case stateExhausted:
			logrus.WithField("models_tried", len(rs.tried)).Error("every model and key combination failed")
			return nil, ErrExhausted

		case stateSuccess:
			return result, nil
		}
	}
}

func (e *Engine) send(ctx context.Context, key, model string, payload Payload) (*Completion, error) {
	payload.Model = model
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &Completion{StatusCode: resp.StatusCode, Body: b, Model: model}, nil
}

// GetResponse answers message in language. It always returns a non-empty string.
func (e *Engine) GetResponse(ctx context.Context, message, language string) (answer string) {
	ctx, span := otel.Tracer("storefront.assistant").Start(ctx, "assistant.GetResponse")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("chat assistant panicked")
			answer = MsgGeneric
		}
		if answer == "" {
			answer = MsgGeneric
		}
	}()

	if language == "" {
		language = "en"
	}
	span.SetAttributes(attribute.String("chat.language", language))

	res, err := e.Complete(ctx, BuildPayload(message, language, e.maxTokens, e.temperature))
	switch {
	case errors.Is(err, ErrExhausted):
		metrics.RecordCompletionResult("exhausted")
		return MsgHighDemand
	case err != nil:
		span.RecordError(err)
		if isTimeout(err) {
			metrics.RecordCompletionResult("timeout")
			return MsgDelayed
		}
		metrics.RecordCompletionResult("error")
		logrus.WithError(err).Error("chat assistant failed")
		return MsgGeneric
	}

	span.SetAttributes(attribute.String("chat.model", res.Model))
	text, err := res.Text()
	if err != nil {
		span.RecordError(err)
		metrics.RecordCompletionResult("error")
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			logrus.WithFields(logrus.Fields{"status": statusErr.StatusCode, "model": res.Model}).Error("completion endpoint returned an error")
			switch statusErr.StatusCode {
			case http.StatusUnauthorized:
				return MsgUnavailable
			case http.StatusTooManyRequests:
				return MsgHighDemand
			}
			return MsgGeneric
		}
		logrus.WithError(err).Error("could not read completion")
		return MsgGeneric
	}

	if strings.TrimSpace(text) == "" {
		metrics.RecordCompletionResult("empty")
		return MsgIntro
	}
	metrics.RecordCompletionResult("completion")
	return text
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
