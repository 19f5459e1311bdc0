package bridge

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// Result is the single-shot continuation of one command. Only the first call
// to any of its methods has an effect.
type Result interface {
	// Success resolves with data. Nil data resolves as void.
	Success(data any)
	// Error resolves with a failure.
	Error(code, message string, details any)
	// NotImplemented resolves with the unknown-command outcome.
	NotImplemented()
}

// ReplyFunc receives the resolved response on the UI loop.
type ReplyFunc func(resp protocol.Response)

type loopResult struct {
	loop     *mainloop.Loop
	logger   *zap.Logger
	method   string
	reply    ReplyFunc
	resolved atomic.Bool
}

// NewResult creates a Result that hands its response to reply on loop,
// inline when resolved from the loop and posted otherwise.
func NewResult(loop *mainloop.Loop, logger *zap.Logger, method string, reply ReplyFunc) Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loopResult{loop: loop, logger: logger, method: method, reply: reply}
}

func (r *loopResult) Success(data any) {
	r.resolve(protocol.Value(data))
}

func (r *loopResult) Error(code, message string, details any) {
	r.resolve(protocol.Failure(code, message, details))
}

func (r *loopResult) NotImplemented() {
	r.resolve(protocol.NotImplementedResponse())
}

func (r *loopResult) resolve(resp protocol.Response) {
	if !r.resolved.CompareAndSwap(false, true) {
		r.logger.Warn("Dropping duplicate result",
			zap.String("method", r.method),
			zap.Stringer("response", resp))
		return
	}
	if !r.loop.Deliver(func() { r.reply(resp) }) {
		r.logger.Warn("UI loop stopped before result delivery",
			zap.String("method", r.method))
	}
}
