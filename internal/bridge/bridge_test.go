package bridge_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/codec"
	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// recorder is a Result that records every resolution, including duplicates.
type recorder struct {
	mu    sync.Mutex
	calls []protocol.Response
}

func (r *recorder) Success(data any) { r.add(protocol.Value(data)) }
func (r *recorder) Error(code, message string, details any) {
	r.add(protocol.Failure(code, message, details))
}
func (r *recorder) NotImplemented() { r.add(protocol.NotImplementedResponse()) }

func (r *recorder) add(resp protocol.Response) {
	r.mu.Lock()
	r.calls = append(r.calls, resp)
	r.mu.Unlock()
}

func (r *recorder) only(t *testing.T) protocol.Response {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.calls, 1)
	return r.calls[0]
}

func startLoop(t *testing.T) *mainloop.Loop {
	t.Helper()
	loop := mainloop.New(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	<-loop.Started()
	return loop
}

type echoRequest struct {
	Text string
}

func decodeEcho(a codec.Args) (echoRequest, error) {
	text, err := a.RequiredString("text")
	return echoRequest{Text: text}, err
}

func TestTable_Dispatch(t *testing.T) {
	var nativeCalls int
	table := bridge.NewTable(zap.NewNop(),
		bridge.Sync("echo", "ECHO_ERROR", decodeEcho, func(req echoRequest) (any, error) {
			nativeCalls++
			return req.Text, nil
		}),
		bridge.Sync("void", "VOID_ERROR", codec.DecodeEmpty, func(codec.Empty) (any, error) {
			nativeCalls++
			return nil, nil
		}),
		bridge.Sync("fail", "FAIL_ERROR", codec.DecodeEmpty, func(codec.Empty) (any, error) {
			return nil, errors.New("sdk not ready")
		}),
		bridge.Sync("panic", "PANIC_ERROR", codec.DecodeEmpty, func(codec.Empty) (any, error) {
			panic("native crash")
		}),
	)
	require.Equal(t, 4, table.Len())
	assert.True(t, table.Has("echo"))

	testCases := []struct {
		name      string
		env       protocol.Envelope
		want      protocol.Response
		wantCalls int
	}{
		{
			name:      "value",
			env:       protocol.NewEnvelope("echo", map[string]any{"text": "hi"}),
			want:      protocol.Value("hi"),
			wantCalls: 1,
		},
		{
			name:      "void",
			env:       protocol.NewEnvelope("void", nil),
			want:      protocol.Void(),
			wantCalls: 1,
		},
		{
			name: "missing parameter never reaches the handler",
			env:  protocol.NewEnvelope("echo", nil),
			want: protocol.Failure(protocol.ErrCodeMissingParameter, "text is required", nil),
		},
		{
			name: "wrong kind",
			env:  protocol.NewEnvelope("echo", map[string]any{"text": true}),
			want: protocol.Failure(protocol.ErrCodeInvalidArguments, "text must be a string, got bool", nil),
		},
		{
			name: "handler error",
			env:  protocol.NewEnvelope("fail", nil),
			want: protocol.Failure("FAIL_ERROR", "sdk not ready", nil),
		},
		{
			name: "handler panic",
			env:  protocol.NewEnvelope("panic", nil),
			want: protocol.Failure("PANIC_ERROR", "native crash", nil),
		},
		{
			name: "unknown command",
			env:  protocol.NewEnvelope("teleport", nil),
			want: protocol.NotImplementedResponse(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nativeCalls = 0
			rec := &recorder{}
			table.Dispatch(tc.env, rec)
			assert.Equal(t, tc.want, rec.only(t))
			assert.Equal(t, tc.wantCalls, nativeCalls)
		})
	}
}

func TestTable_NotImplementedIsNotAnError(t *testing.T) {
	rec := &recorder{}
	bridge.NewTable(nil).Dispatch(protocol.NewEnvelope("nope", nil), rec)
	resp := rec.only(t)
	assert.True(t, resp.NotImplemented)
	assert.False(t, resp.IsError())
}

func TestTable_AsyncResolvesFromCompletion(t *testing.T) {
	var complete func(ok bool)
	table := bridge.NewTable(nil,
		bridge.Async("later", "LATER_ERROR", codec.DecodeEmpty, func(_ codec.Empty, res bridge.Result) error {
			complete = func(ok bool) { res.Success(ok) }
			return nil
		}),
		bridge.Async("refused", "REFUSED_ERROR", codec.DecodeEmpty, func(codec.Empty, bridge.Result) error {
			return errors.New("not booted")
		}),
	)

	rec := &recorder{}
	table.Dispatch(protocol.NewEnvelope("later", nil), rec)
	assert.Empty(t, rec.calls, "async dispatch must return before resolution")
	require.NotNil(t, complete)
	complete(true)
	assert.Equal(t, protocol.Value(true), rec.only(t))

	rec = &recorder{}
	table.Dispatch(protocol.NewEnvelope("refused", nil), rec)
	assert.Equal(t, protocol.Failure("REFUSED_ERROR", "not booted", nil), rec.only(t))
}

func TestNewTable_DuplicatePanics(t *testing.T) {
	entry := bridge.Sync("x", "X", codec.DecodeEmpty, func(codec.Empty) (any, error) { return nil, nil })
	assert.Panics(t, func() { bridge.NewTable(nil, entry, entry) })
}

func TestResult_SingleShotOnLoop(t *testing.T) {
	loop := startLoop(t)

	var (
		mu       sync.Mutex
		replies  []protocol.Response
		onLoop   []bool
		resolved = make(chan struct{}, 2)
	)
	res := bridge.NewResult(loop, zap.NewNop(), "boot", func(resp protocol.Response) {
		mu.Lock()
		replies = append(replies, resp)
		onLoop = append(onLoop, loop.IsCurrent())
		mu.Unlock()
		resolved <- struct{}{}
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.Success(true)
			res.Error("BOOT_ERROR", "late", nil)
		}()
	}
	wg.Wait()
	<-resolved
	require.NoError(t, loop.Sync(context.Background(), func() {}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, replies, 1)
	assert.Equal(t, []bool{true}, onLoop)
}

type fakeSDK struct {
	mu       sync.Mutex
	listener string
	binds    int
	unbinds  int
}

func (f *fakeSDK) bind(name string) func() {
	return func() {
		f.mu.Lock()
		f.listener = name
		f.binds++
		f.mu.Unlock()
	}
}

func (f *fakeSDK) unbind() {
	f.mu.Lock()
	f.listener = ""
	f.unbinds++
	f.mu.Unlock()
}

func TestSession_Lifecycle(t *testing.T) {
	sdk := &fakeSDK{}
	s := bridge.NewSession(sdk, nil)
	assert.False(t, s.Active())

	s.Open(sdk.bind("first"), sdk.unbind)
	assert.True(t, s.Active())
	assert.Equal(t, "first", sdk.listener)

	s.Open(sdk.bind("again"), sdk.unbind)
	assert.Equal(t, 1, sdk.binds, "open is a no-op once registered")

	s.Close()
	s.Close()
	assert.False(t, s.Active())
	assert.Equal(t, "", sdk.listener)
	assert.Equal(t, 1, sdk.unbinds)

	s.Open(sdk.bind("reopen"), sdk.unbind)
	assert.False(t, s.Active(), "closed is terminal")
}

func TestSession_ReplacementUnregistersPrevious(t *testing.T) {
	sdk := &fakeSDK{}
	first := bridge.NewSession(sdk, nil)
	first.Open(sdk.bind("first"), sdk.unbind)

	second := bridge.NewSession(sdk, nil)
	second.Open(sdk.bind("second"), sdk.unbind)

	assert.False(t, first.Active())
	assert.True(t, second.Active())
	assert.Equal(t, 1, sdk.unbinds)
	assert.Equal(t, "second", sdk.listener)

	// Disposing the replaced bridge must not clear the live registration.
	first.Close()
	assert.Equal(t, "second", sdk.listener)
	assert.Equal(t, 1, sdk.unbinds)

	second.Close()
	assert.Equal(t, "", sdk.listener)
}

func TestEmitter_BackgroundEventIsRescheduled(t *testing.T) {
	loop := startLoop(t)
	sdk := &fakeSDK{}
	session := bridge.NewSession(sdk, nil)
	session.Open(sdk.bind("relay"), sdk.unbind)
	t.Cleanup(session.Close)

	type delivery struct {
		ev     protocol.Event
		onLoop bool
	}
	got := make(chan delivery, 1)
	sink := bridge.EventSinkFunc(func(ev protocol.Event) {
		got <- delivery{ev: ev, onLoop: loop.IsCurrent()}
	})
	em := bridge.NewEmitter(loop, sink, session, nil)

	gate := make(chan struct{})
	loop.Post(func() { <-gate })

	emitted := make(chan struct{})
	go func() {
		em.Emit(protocol.EventBadgeChanged, protocol.BadgePayload(7, 0))
		close(emitted)
	}()
	<-emitted
	assert.Empty(t, got, "sink invoked synchronously from a background goroutine")

	close(gate)
	select {
	case d := <-got:
		assert.True(t, d.onLoop)
		assert.Equal(t, protocol.EventBadgeChanged, d.ev.Name)
		assert.Equal(t, map[string]any{"unread": 7, "alert": 0}, d.ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestEmitter_OnLoopIsInline(t *testing.T) {
	loop := startLoop(t)
	sdk := &fakeSDK{}
	session := bridge.NewSession(sdk, nil)
	session.Open(sdk.bind("relay"), sdk.unbind)
	t.Cleanup(session.Close)

	var seen []string
	em := bridge.NewEmitter(loop, bridge.EventSinkFunc(func(ev protocol.Event) {
		seen = append(seen, ev.Name)
	}), session, nil)

	var inline bool
	require.NoError(t, loop.Sync(context.Background(), func() {
		em.Emit(protocol.EventShowMessenger, nil)
		inline = len(seen) == 1
	}))
	assert.True(t, inline)
}

func TestEmitter_DropsAfterClose(t *testing.T) {
	loop := startLoop(t)
	sdk := &fakeSDK{}
	session := bridge.NewSession(sdk, nil)
	session.Open(sdk.bind("relay"), sdk.unbind)

	var count int
	em := bridge.NewEmitter(loop, bridge.EventSinkFunc(func(protocol.Event) { count++ }), session, nil)

	// Queued before close, delivered after: still dropped.
	gate := make(chan struct{})
	loop.Post(func() { <-gate })
	em.Emit(protocol.EventChatCreated, map[string]any{"chatId": "c1"})
	session.Close()
	close(gate)

	em.Emit(protocol.EventChatCreated, map[string]any{"chatId": "c2"})
	require.NoError(t, loop.Sync(context.Background(), func() {}))
	assert.Zero(t, count)
}

type echoBridge struct {
	table    *bridge.Table
	disposed bool
}

func (b *echoBridge) HandleMethodCall(env protocol.Envelope, res bridge.Result) {
	b.table.Dispatch(env, res)
}

func (b *echoBridge) Dispose() { b.disposed = true }

func TestMethodChannel_Invoke(t *testing.T) {
	loop := startLoop(t)
	ch := bridge.NewMethodChannel("", loop, nil)
	assert.Equal(t, protocol.DefaultChannelName, ch.Name())

	_, err := ch.Invoke(context.Background(), protocol.NewEnvelope("echo", nil))
	assert.ErrorIs(t, err, bridge.ErrNoHandler)

	var handledOnLoop bool
	table := bridge.NewTable(nil, bridge.Sync("echo", "ECHO_ERROR", decodeEcho, func(req echoRequest) (any, error) {
		handledOnLoop = loop.IsCurrent()
		return req.Text, nil
	}))
	ch.SetMethodCallHandler(&echoBridge{table: table})

	resp, err := ch.Invoke(context.Background(), protocol.NewEnvelope("echo", map[string]any{"text": "pong"}))
	require.NoError(t, err)
	assert.Equal(t, protocol.Value("pong"), resp)
	assert.True(t, handledOnLoop)

	resp, err = ch.Invoke(context.Background(), protocol.NewEnvelope("missing", nil))
	require.NoError(t, err)
	assert.True(t, resp.NotImplemented)
}

func TestMethodChannel_Subscribe(t *testing.T) {
	loop := startLoop(t)
	ch := bridge.NewMethodChannel("custom", loop, nil)

	var a, b []string
	cancelA := ch.Subscribe(func(ev protocol.Event) { a = append(a, ev.Name) })
	ch.Subscribe(func(ev protocol.Event) { b = append(b, ev.Name) })

	require.NoError(t, loop.Sync(context.Background(), func() {
		ch.Emit(protocol.Event{Name: protocol.EventShowMessenger})
		cancelA()
		ch.Emit(protocol.Event{Name: protocol.EventHideMessenger})
	}))

	assert.Equal(t, []string{protocol.EventShowMessenger}, a)
	assert.Equal(t, []string{protocol.EventShowMessenger, protocol.EventHideMessenger}, b)
}
