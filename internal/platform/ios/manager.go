package ios

import (
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// PlatformName identifies this binding in config and logs.
const PlatformName = "ios"

var _ bridge.Bridge = (*Manager)(nil)

// Manager is the iOS implementation of bridge.Bridge.
type Manager struct {
	sdk     SDK
	logger  *zap.Logger
	table   *bridge.Table
	session *bridge.Session
}

// NewManager builds the command table and installs the delegate on sdk.
func NewManager(sdk SDK, loop *mainloop.Loop, sink bridge.EventSink, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("platform", PlatformName))

	m := &Manager{
		sdk:     sdk,
		logger:  logger,
		session: bridge.NewSession(sdk, logger),
	}
	m.table = bridge.NewTable(logger, m.entries()...)

	d := &delegate{emitter: bridge.NewEmitter(loop, sink, m.session, logger)}
	m.session.Open(func() { sdk.SetDelegate(d) }, func() { sdk.SetDelegate(nil) })

	logger.Info("Bridge attached", zap.Int("commands", m.table.Len()))
	return m
}

// HandleMethodCall dispatches env through the command table.
func (m *Manager) HandleMethodCall(env protocol.Envelope, res bridge.Result) {
	m.logger.Debug("Method call", zap.String("method", env.Method))
	m.table.Dispatch(env, res)
}

// Dispose releases the delegate.
func (m *Manager) Dispose() {
	m.session.Close()
	m.logger.Info("Bridge disposed")
}
