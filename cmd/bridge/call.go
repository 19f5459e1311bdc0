package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

var (
	callURL     string
	callArgs    string
	callTimeout time.Duration
	callWS      bool
)

var callCmd = &cobra.Command{
	Use:   "call <method>",
	Short: "Send one command to a running bridge",
	Long: `Sends a single method call to a running bridge host and prints the
response frame as JSON.

Examples:
  channelio-bridge call boot --args '{"pluginKey":"my-plugin","language":"en"}'
  channelio-bridge call isBooted --ws`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env := protocol.Envelope{Method: args[0]}
		if callArgs != "" {
			var arguments map[string]any
			if err := json.Unmarshal([]byte(callArgs), &arguments); err != nil {
				return fmt.Errorf("parse --args: %w", err)
			}
			env.Arguments = arguments
		}
		frame := protocol.Frame{
			Type: protocol.FrameTypeCall,
			ID:   uuid.NewString(),
			Call: &env,
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
		defer cancel()

		var resp *protocol.Frame
		var err error
		if callWS {
			resp, err = callOverWebSocket(ctx, frame)
		} else {
			resp, err = callOverHTTP(ctx, frame)
		}
		if err != nil {
			return err
		}

		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")
		return out.Encode(resp)
	},
}

func init() {
	callCmd.Flags().StringVar(&callURL, "url", "http://localhost:8080", "Base URL of the bridge host")
	callCmd.Flags().StringVar(&callArgs, "args", "", "Command arguments as a JSON object")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "How long to wait for the response")
	callCmd.Flags().BoolVar(&callWS, "ws", false, "Send the call over WebSocket instead of HTTP")
	rootCmd.AddCommand(callCmd)
}

func callOverHTTP(ctx context.Context, frame protocol.Frame) (*protocol.Frame, error) {
	body, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(callURL, "/")+"/api/v1/invoke", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusMethodNotAllowed {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bridge rejected call: %s", strings.TrimSpace(string(msg)))
	}

	var out protocol.Frame
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func callOverWebSocket(ctx context.Context, frame protocol.Frame) (*protocol.Frame, error) {
	wsURL := "ws" + strings.TrimPrefix(strings.TrimSuffix(callURL, "/"), "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	if err := conn.WriteJSON(frame); err != nil {
		return nil, fmt.Errorf("send call: %w", err)
	}

	// Events broadcast to every client arrive on the same connection.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		out, err := protocol.DecodeFrame(data)
		if err != nil {
			continue
		}
		if out.Type == protocol.FrameTypeResponse && out.ID == frame.ID {
			return out, nil
		}
	}
}
