package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

type recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
	auth       []string
	failFirst  int32
	calls      atomic.Int32
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.calls.Add(1) <= r.failFirst {
		http.Error(w, "try later", http.StatusServiceUnavailable)
		return
	}
	var d Delivery
	if err := json.NewDecoder(req.Body).Decode(&d); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	r.deliveries = append(r.deliveries, d)
	r.auth = append(r.auth, req.Header.Get("Authorization"))
	r.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, d := range r.deliveries {
		out = append(out, d.Event.Name)
	}
	return out
}

func TestForwarder_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, AuthHeader: "Bearer secret"}, protocol.DefaultChannelName, zap.NewNop())
	require.NoError(t, f.Start(context.Background()))
	defer f.Stop(context.Background())

	f.Publish(protocol.Event{Name: protocol.EventBadgeChanged, Payload: map[string]any{"unread": 1, "alert": 0}})
	f.Publish(protocol.Event{Name: protocol.EventShowMessenger})
	f.Publish(protocol.Event{Name: protocol.EventHideMessenger})

	require.Eventually(t, func() bool { return len(rec.names()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{protocol.EventBadgeChanged, protocol.EventShowMessenger, protocol.EventHideMessenger}, rec.names())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "Bearer secret", rec.auth[0])
	assert.Equal(t, protocol.DefaultChannelName, rec.deliveries[0].Channel)
	assert.NotEmpty(t, rec.deliveries[0].DeliveryID)
	assert.Equal(t, map[string]any{"unread": float64(1), "alert": float64(0)}, rec.deliveries[0].Event.Payload)
}

func TestForwarder_Retries(t *testing.T) {
	rec := &recorder{failFirst: 2}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, RetryCount: 2}, "", nil)
	require.NoError(t, f.Deliver(context.Background(), protocol.Event{Name: protocol.EventChatCreated}))
	assert.Equal(t, int32(3), rec.calls.Load())
	assert.Equal(t, []string{protocol.EventChatCreated}, rec.names())
}

func TestForwarder_RetriesExhausted(t *testing.T) {
	rec := &recorder{failFirst: 10}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, RetryCount: 1}, "", nil)
	err := f.Deliver(context.Background(), protocol.Event{Name: protocol.EventChatCreated})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(2), rec.calls.Load())
}

func TestForwarder_CancelledDuringBackoff(t *testing.T) {
	rec := &recorder{failFirst: 10}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, RetryCount: 5}, "", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Deliver(ctx, protocol.Event{Name: protocol.EventChatCreated}), context.DeadlineExceeded)
}

func TestForwarder_RequiresURL(t *testing.T) {
	f := NewForwarder(Config{}, "", nil)
	assert.Error(t, f.Start(context.Background()))
}

func TestForwarder_DropsWhenQueueFull(t *testing.T) {
	f := NewForwarder(Config{URL: "http://unused", QueueSize: 1}, "", nil)
	f.Publish(protocol.Event{Name: "a"})
	f.Publish(protocol.Event{Name: "b"})
	assert.Len(t, f.queue, 1)
}
