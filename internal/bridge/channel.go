package bridge

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

var (
	// ErrNoHandler is returned when a call arrives before a bridge is attached.
	ErrNoHandler = errors.New("bridge: no method call handler")
	// ErrLoopStopped is returned when the UI loop no longer accepts work.
	ErrLoopStopped = errors.New("bridge: UI loop stopped")
)

// MethodChannel is the named application-facing channel. Calls enter the UI
// loop here; responses and events leave it here.
type MethodChannel struct {
	name   string
	loop   *mainloop.Loop
	logger *zap.Logger

	mu      sync.RWMutex
	handler Bridge
	subs    map[int]func(protocol.Event)
	nextSub int
}

// NewMethodChannel creates a channel driven by loop.
func NewMethodChannel(name string, loop *mainloop.Loop, logger *zap.Logger) *MethodChannel {
	if name == "" {
		name = protocol.DefaultChannelName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MethodChannel{
		name:   name,
		loop:   loop,
		logger: logger.With(zap.String("channel", name)),
		subs:   make(map[int]func(protocol.Event)),
	}
}

// Name returns the channel name.
func (c *MethodChannel) Name() string {
	return c.name
}

// Loop returns the UI loop the channel runs on.
func (c *MethodChannel) Loop() *mainloop.Loop {
	return c.loop
}

// SetMethodCallHandler attaches the bridge that handles calls. Passing nil
// detaches it.
func (c *MethodChannel) SetMethodCallHandler(b Bridge) {
	c.mu.Lock()
	c.handler = b
	c.mu.Unlock()
}

// InvokeAsync posts env onto the UI loop and hands the response to reply on
// the loop. It returns immediately.
func (c *MethodChannel) InvokeAsync(env protocol.Envelope, reply ReplyFunc) error {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		return ErrNoHandler
	}

	res := NewResult(c.loop, c.logger, env.Method, reply)
	if !c.loop.Post(func() { h.HandleMethodCall(env, res) }) {
		return ErrLoopStopped
	}
	return nil
}

// Invoke posts env onto the UI loop and waits for its response.
func (c *MethodChannel) Invoke(ctx context.Context, env protocol.Envelope) (protocol.Response, error) {
	ch := make(chan protocol.Response, 1)
	if err := c.InvokeAsync(env, func(resp protocol.Response) { ch <- resp }); err != nil {
		return protocol.Response{}, err
	}
	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return protocol.Response{}, ctx.Err()
	}
}

// Subscribe registers fn for every event emitted on the channel. fn runs on
// the UI loop and must not block. The returned function unsubscribes.
func (c *MethodChannel) Subscribe(fn func(protocol.Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Emit implements EventSink by fanning ev out to subscribers.
func (c *MethodChannel) Emit(ev protocol.Event) {
	c.mu.RLock()
	subs := make([]func(protocol.Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.RUnlock()

	c.logger.Debug("Emitting event",
		zap.String("event", ev.Name),
		zap.Int("subscribers", len(subs)))
	for _, fn := range subs {
		fn(ev)
	}
}
