package bridge

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type sessionState int32

const (
	stateUnregistered sessionState = iota
	stateRegistered
	stateClosed
)

// registry tracks which session currently owns the listener slot of each
// native SDK instance.
var registry = struct {
	sync.Mutex
	owners map[any]*Session
}{owners: make(map[any]*Session)}

// Session owns the single listener registration of one bridge instance
// against one native SDK.
//
// States run unregistered -> registered -> closed; closed is terminal. Opening
// a session for an SDK that another session owns unregisters and revokes the
// previous owner first. Closing a session that has already been replaced does
// not touch the native registration.
type Session struct {
	key    any
	logger *zap.Logger
	state  atomic.Int32
	unbind func()
}

// NewSession creates an unregistered session for the SDK identified by key.
func NewSession(key any, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{key: key, logger: logger}
}

// Open registers the listener through bind. unbind must detach it.
// Open has no effect unless the session is unregistered.
func (s *Session) Open(bind, unbind func()) {
	registry.Lock()
	defer registry.Unlock()

	if sessionState(s.state.Load()) != stateUnregistered {
		return
	}

	if prev, ok := registry.owners[s.key]; ok && prev != s {
		s.logger.Debug("Replacing listener registration")
		prev.state.Store(int32(stateClosed))
		prev.unbind()
	}

	s.unbind = unbind
	registry.owners[s.key] = s
	s.state.Store(int32(stateRegistered))
	bind()
}

// Active reports whether events may still be relayed for this session.
func (s *Session) Active() bool {
	return sessionState(s.state.Load()) == stateRegistered
}

// Close detaches the listener if this session still owns the registration.
// It is safe to call more than once.
func (s *Session) Close() {
	registry.Lock()
	defer registry.Unlock()

	prev := sessionState(s.state.Swap(int32(stateClosed)))
	if prev != stateRegistered {
		return
	}
	if registry.owners[s.key] != s {
		return
	}
	delete(registry.owners, s.key)
	s.unbind()
}
