// Package webhook forwards bridge events to an external HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// Config holds the event webhook configuration.
type Config struct {
	// URL receives one POST per event.
	URL string
	// AuthHeader is sent as the Authorization header when set.
	AuthHeader string
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// RetryCount is the number of retries after the first attempt.
	RetryCount int
	// QueueSize bounds events waiting for delivery.
	QueueSize int
}

// Delivery is the body posted for each event.
type Delivery struct {
	DeliveryID string         `json:"deliveryId"`
	Timestamp  int64          `json:"timestamp"`
	Channel    string         `json:"channel"`
	Event      protocol.Event `json:"event"`
}

// Forwarder posts events to a webhook from a single delivery goroutine, so
// events arrive in the order they were published.
type Forwarder struct {
	config     Config
	channel    string
	httpClient *http.Client
	logger     *zap.Logger

	queue    chan protocol.Event
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewForwarder creates a forwarder for events of the named channel.
func NewForwarder(config Config, channel string, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}

	return &Forwarder{
		config:  config,
		channel: channel,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With(zap.String("transport", "webhook")),
		queue:  make(chan protocol.Event, config.QueueSize),
		stopCh: make(chan struct{}),
	}
}

// Start starts the delivery goroutine. It stops when ctx is done or Stop is
// called.
func (f *Forwarder) Start(ctx context.Context) error {
	if f.config.URL == "" {
		return fmt.Errorf("webhook URL not configured")
	}
	f.wg.Add(1)
	go f.run(ctx)
	f.logger.Info("Webhook forwarder started", zap.String("url", f.config.URL))
	return nil
}

// Stop stops delivery and waits for the in-flight event.
func (f *Forwarder) Stop(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		f.logger.Info("Webhook forwarder stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish queues ev for delivery. Events are dropped when the queue is full.
func (f *Forwarder) Publish(ev protocol.Event) {
	select {
	case f.queue <- ev:
	default:
		f.logger.Warn("Webhook queue full, dropping event", zap.String("event", ev.Name))
	}
}

func (f *Forwarder) run(ctx context.Context) {
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopCh:
			return
		case ev := <-f.queue:
			if err := f.Deliver(ctx, ev); err != nil {
				f.logger.Warn("Event delivery failed", zap.String("event", ev.Name), zap.Error(err))
			}
		}
	}
}

// Deliver posts one event, retrying with exponential backoff.
func (f *Forwarder) Deliver(ctx context.Context, ev protocol.Event) error {
	body, err := json.Marshal(Delivery{
		DeliveryID: uuid.NewString(),
		Timestamp:  time.Now().UnixMilli(),
		Channel:    f.channel,
		Event:      ev,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= f.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			f.logger.Debug("Retrying webhook",
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
		}

		err := f.post(ctx, body)
		if err == nil {
			f.logger.Debug("Event delivered", zap.String("event", ev.Name))
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("all retries exhausted: %w", lastErr)
}

func (f *Forwarder) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if f.config.AuthHeader != "" {
		req.Header.Set("Authorization", f.config.AuthHeader)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook error: %d - %s", resp.StatusCode, string(respBody))
	}

	return nil
}
