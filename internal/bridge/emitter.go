package bridge

import (
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// Emitter redelivers relay events to a sink on the UI loop. Events raised
// while the session is not active are dropped.
type Emitter struct {
	loop    *mainloop.Loop
	sink    EventSink
	session *Session
	logger  *zap.Logger
}

// NewEmitter creates an emitter bound to session.
func NewEmitter(loop *mainloop.Loop, sink EventSink, session *Session, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{loop: loop, sink: sink, session: session, logger: logger}
}

// Emit forwards an event. It never blocks on the sink when called off the
// loop.
func (e *Emitter) Emit(name string, payload map[string]any) {
	if !e.session.Active() {
		e.logger.Debug("Dropping event from stale registration", zap.String("event", name))
		return
	}

	ev := protocol.Event{Name: name, Payload: payload}
	ok := e.loop.Deliver(func() {
		// The session may have closed while the event was queued.
		if !e.session.Active() {
			e.logger.Debug("Dropping event queued before dispose", zap.String("event", name))
			return
		}
		e.sink.Emit(ev)
	})
	if !ok {
		e.logger.Warn("UI loop stopped, event dropped", zap.String("event", name))
	}
}
