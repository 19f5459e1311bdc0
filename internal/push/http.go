package push

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// FallbackFuncs adapts plain functions to Fallback. Nil fields are skipped.
type FallbackFuncs struct {
	Message func(msg Message)
	Token   func(token string)
}

func (f FallbackFuncs) OnMessage(msg Message) {
	if f.Message != nil {
		f.Message(msg)
	}
}

func (f FallbackFuncs) OnNewToken(token string) {
	if f.Token != nil {
		f.Token(token)
	}
}

type messageRequest struct {
	Data   map[string]any `json:"data"`
	Tapped bool           `json:"tapped,omitempty"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// MessageHandler returns an http.Handler that ingests a posted notification.
func (in *Ingestor) MessageHandler() http.Handler {
	return http.HandlerFunc(in.handleMessage)
}

// TokenHandler returns an http.Handler that registers a posted device token.
func (in *Ingestor) TokenHandler() http.Handler {
	return http.HandlerFunc(in.handleToken)
}

func (in *Ingestor) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Data == nil {
		http.Error(w, "data is required", http.StatusBadRequest)
		return
	}

	var (
		msg     Message
		outcome Outcome
	)
	if req.Tapped {
		msg, outcome = in.OnNotificationTapped(req.Data)
	} else {
		msg, outcome = in.OnMessageReceived(req.Data)
	}

	in.writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"messageId": msg.ID,
		"outcome":   outcome,
	})
}

func (in *Ingestor) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := in.OnNewToken(req.Token); err != nil {
		in.writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	in.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (in *Ingestor) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		in.logger.Warn("Failed to write response", zap.Error(err))
	}
}
