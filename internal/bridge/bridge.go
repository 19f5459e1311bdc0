// Package bridge holds the platform-neutral machinery shared by every native
// SDK binding: the Bridge contract, the command table, single-shot results,
// listener session ownership and event emission onto the UI loop.
package bridge

import (
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// Bridge is the contract both platform bindings implement.
type Bridge interface {
	// HandleMethodCall dispatches one envelope. It must be called on the UI
	// loop and must resolve res exactly once, possibly later.
	HandleMethodCall(env protocol.Envelope, res Result)
	// Dispose detaches the native listener. No event is relayed afterwards.
	Dispose()
}

// EventSink receives events on the UI loop.
type EventSink interface {
	Emit(ev protocol.Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev protocol.Event)

// Emit implements EventSink.
func (f EventSinkFunc) Emit(ev protocol.Event) {
	f(ev)
}
