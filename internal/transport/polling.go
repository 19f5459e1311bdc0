package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// DefaultInvokeTimeout bounds how long an HTTP call waits for its response.
const DefaultInvokeTimeout = 30 * time.Second

// PollingServer serves the method channel over plain HTTP.
type PollingServer struct {
	logger        *zap.Logger
	channel       *bridge.MethodChannel
	invokeTimeout time.Duration

	// Event log, oldest first
	logMu   sync.RWMutex
	log     []protocol.Frame
	logSize int
	seq     int64
}

// NewPollingServer creates a polling server keeping the last logSize events.
func NewPollingServer(channel *bridge.MethodChannel, logSize int, invokeTimeout time.Duration, logger *zap.Logger) *PollingServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if invokeTimeout <= 0 {
		invokeTimeout = DefaultInvokeTimeout
	}
	return &PollingServer{
		logger:        logger.With(zap.String("transport", "polling")),
		channel:       channel,
		invokeTimeout: invokeTimeout,
		log:           make([]protocol.Frame, 0),
		logSize:       logSize,
	}
}

// Start starts the polling server.
func (ps *PollingServer) Start(ctx context.Context) error {
	ps.logger.Info("Polling server started", zap.Int("logSize", ps.logSize))
	return nil
}

// Stop stops the polling server.
func (ps *PollingServer) Stop(ctx context.Context) error {
	ps.logger.Info("Polling server stopped")
	return nil
}

// Publish appends an event to the log with the next sequence number.
func (ps *PollingServer) Publish(ev protocol.Event) {
	ps.logMu.Lock()
	ps.seq++
	ps.log = append(ps.log, protocol.Frame{
		Type:    protocol.FrameTypeEvent,
		Channel: ps.channel.Name(),
		Event:   &ev,
		Seq:     ps.seq,
	})
	if len(ps.log) > ps.logSize {
		ps.log = ps.log[len(ps.log)-ps.logSize:]
	}
	ps.logMu.Unlock()
}

// Since returns the logged events with a sequence number above since, and the
// latest sequence number.
func (ps *PollingServer) Since(since int64) ([]protocol.Frame, int64) {
	ps.logMu.RLock()
	defer ps.logMu.RUnlock()

	frames := make([]protocol.Frame, 0)
	for _, f := range ps.log {
		if f.Seq > since {
			frames = append(frames, f)
		}
	}
	return frames, ps.seq
}

// EventsHandler returns an http.Handler for the event log.
func (ps *PollingServer) EventsHandler() http.Handler {
	return http.HandlerFunc(ps.handleEvents)
}

// InvokeHandler returns an http.Handler that runs one call and waits for its
// response.
func (ps *PollingServer) InvokeHandler() http.Handler {
	return http.HandlerFunc(ps.handleInvoke)
}

func (ps *PollingServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "Invalid since", http.StatusBadRequest)
			return
		}
		since = v
	}

	frames, seq := ps.Since(since)
	writeJSON(w, http.StatusOK, map[string]any{
		"events": frames,
		"seq":    seq,
	})
}

func (ps *PollingServer) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var frame protocol.Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if frame.Call == nil || frame.Call.Method == "" {
		http.Error(w, "call.method is required", http.StatusBadRequest)
		return
	}
	if frame.ID == "" {
		frame.ID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), ps.invokeTimeout)
	defer cancel()

	logger := ps.logger.With(zap.String("callId", frame.ID), zap.String("method", frame.Call.Method))
	resp, err := ps.channel.Invoke(ctx, *frame.Call)
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Call timed out")
		status = http.StatusGatewayTimeout
		resp = protocol.Failure(ErrCodeUnavailable, err.Error(), nil)
	default:
		logger.Warn("Call rejected", zap.Error(err))
		status = http.StatusServiceUnavailable
		resp = protocol.Failure(ErrCodeUnavailable, err.Error(), nil)
	}

	writeJSON(w, status, protocol.Frame{
		Type:     protocol.FrameTypeResponse,
		ID:       frame.ID,
		Channel:  ps.channel.Name(),
		Response: &resp,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
