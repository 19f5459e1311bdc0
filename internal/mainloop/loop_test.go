package mainloop_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
)

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

func TestLoop_PostRunsInOrderOnLoop(t *testing.T) {
	loop := startLoop(t)

	var (
		mu    sync.Mutex
		order []int
	)
	onLoop := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, loop.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			onLoop <- loop.IsCurrent()
		}))
	}
	require.NoError(t, loop.Sync(context.Background(), func() {}))

	assert.Equal(t, []int{0, 1, 2}, order)
	for i := 0; i < 3; i++ {
		assert.True(t, <-onLoop)
	}
	assert.False(t, loop.IsCurrent())
}

func TestLoop_DeliverOffLoopIsAsynchronous(t *testing.T) {
	loop := startLoop(t)

	gate := make(chan struct{})
	require.True(t, loop.Post(func() { <-gate }))

	ran := make(chan bool, 1)
	returned := make(chan struct{})
	go func() {
		loop.Deliver(func() { ran <- loop.IsCurrent() })
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Deliver blocked its caller")
	}
	assert.Empty(t, ran, "task ran before the loop was free")

	close(gate)
	select {
	case current := <-ran:
		assert.True(t, current)
	case <-time.After(time.Second):
		t.Fatal("posted task never ran")
	}
}

func TestLoop_DeliverOnLoopIsInline(t *testing.T) {
	loop := startLoop(t)

	var inline bool
	require.NoError(t, loop.Sync(context.Background(), func() {
		executed := false
		loop.Deliver(func() { executed = true })
		inline = executed
	}))
	assert.True(t, inline)
}

func TestLoop_PanicDoesNotStopLoop(t *testing.T) {
	loop := startLoop(t)

	loop.Post(func() { panic("boom") })

	var ran bool
	require.NoError(t, loop.Sync(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_PostAfterStop(t *testing.T) {
	loop := mainloop.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	<-loop.Started()
	cancel()
	<-loop.Done()

	assert.False(t, loop.Post(func() {}))
	err := loop.Sync(context.Background(), func() {})
	assert.True(t, mainloop.IsStopped(err))
}

func TestLoop_RunTwice(t *testing.T) {
	loop := startLoop(t)
	assert.ErrorIs(t, loop.Run(context.Background()), mainloop.ErrAlreadyRunning)
}

func TestLoop_TasksPostedBeforeRun(t *testing.T) {
	loop := mainloop.New(nil)
	ran := make(chan struct{})
	require.True(t, loop.Post(func() { close(ran) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task posted before Run never executed")
	}
}
