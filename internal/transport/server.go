package transport

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/push"
)

// Routes configures the HTTP surface built by NewMux.
type Routes struct {
	WebSocketPath string
	InvokePath    string
	EventsPath    string
	// Push is nil when push ingestion is disabled.
	Push      *push.Ingestor
	PushPath  string
	TokenPath string
	Version   string
}

// DefaultRoutes returns the standard endpoint layout.
func DefaultRoutes() Routes {
	return Routes{
		WebSocketPath: "/ws",
		InvokePath:    "/api/v1/invoke",
		EventsPath:    "/api/v1/events",
	}
}

// NewMux wires the transports and push ingestion onto one mux.
func NewMux(routes Routes, ws *WebSocketServer, poll *PollingServer, logger *zap.Logger) *http.ServeMux {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "healthy",
			"version":     routes.Version,
			"channel":     ws.channel.Name(),
			"connections": ws.ConnectionCount(),
		})
	})

	mux.Handle(routes.WebSocketPath, ws.HTTPHandler())
	mux.Handle(routes.InvokePath, poll.InvokeHandler())
	mux.Handle(routes.EventsPath, poll.EventsHandler())

	if routes.Push != nil {
		mux.Handle(routes.PushPath, routes.Push.MessageHandler())
		mux.Handle(routes.TokenPath, routes.Push.TokenHandler())
		logger.Info("Push endpoints registered",
			zap.String("path", routes.PushPath),
			zap.String("tokenPath", routes.TokenPath))
	}

	return mux
}
