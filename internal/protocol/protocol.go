// Package protocol defines the wire shapes exchanged between the application
// layer and the bridge: command envelopes, responses and events.
// The shapes are platform-agnostic; both native SDK bindings produce the same ones.
package protocol

import (
	"encoding/json"
	"fmt"
)

// DefaultChannelName is the method channel name used when none is configured.
const DefaultChannelName = "channel_io_manager"

// Envelope is a single command issued by the application layer.
type Envelope struct {
	// Method is the command name, e.g. "boot".
	Method string `json:"method"`
	// Arguments holds the untyped command arguments. May be nil.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// NewEnvelope creates an envelope for the given method.
func NewEnvelope(method string, args map[string]any) Envelope {
	return Envelope{Method: method, Arguments: args}
}

// Response is the terminal outcome of one Envelope.
//
// Exactly one of Data or the Error pair is populated. A fire-and-forget
// command resolves with Success nil and no payload.
type Response struct {
	// Success is true for data results, false for errors, nil for void results.
	Success *bool `json:"success,omitempty"`
	// Data is the command result.
	Data any `json:"data,omitempty"`
	// ErrorCode is the machine readable error code.
	ErrorCode string `json:"errorCode,omitempty"`
	// ErrorMessage is the human readable error text.
	ErrorMessage string `json:"errorMessage,omitempty"`
	// ErrorDetails carries optional structured error detail.
	ErrorDetails any `json:"errorDetails,omitempty"`
	// NotImplemented marks an unrecognized command name. It is not an error.
	NotImplemented bool `json:"notImplemented,omitempty"`
}

// Void returns the response of a command that completed with no payload.
func Void() Response {
	return Response{}
}

// Value returns a successful response carrying data.
// A nil data value is treated as Void.
func Value(data any) Response {
	if data == nil {
		return Void()
	}
	ok := true
	return Response{Success: &ok, Data: data}
}

// Failure returns an error response.
func Failure(code, message string, details any) Response {
	ok := false
	return Response{Success: &ok, ErrorCode: code, ErrorMessage: message, ErrorDetails: details}
}

// NotImplementedResponse returns the distinguished outcome for unknown methods.
func NotImplementedResponse() Response {
	return Response{NotImplemented: true}
}

// IsError reports whether the response carries an error.
func (r Response) IsError() bool {
	return r.Success != nil && !*r.Success
}

// String implements fmt.Stringer for logging.
func (r Response) String() string {
	switch {
	case r.NotImplemented:
		return "notImplemented"
	case r.IsError():
		return fmt.Sprintf("error(%s: %s)", r.ErrorCode, r.ErrorMessage)
	case r.Success == nil:
		return "void"
	default:
		return fmt.Sprintf("value(%v)", r.Data)
	}
}

// Event is pushed to the application layer. It is never acknowledged.
type Event struct {
	// Name is the event name, e.g. "onBadgeChanged".
	Name string `json:"eventName"`
	// Payload is the event body, or nil for payload-less events.
	Payload map[string]any `json:"payload"`
}

// FrameType distinguishes the frames carried by a transport.
type FrameType string

const (
	FrameTypeCall     FrameType = "call"
	FrameTypeResponse FrameType = "response"
	FrameTypeEvent    FrameType = "event"
)

// Frame is the transport envelope multiplexing calls, responses and events
// on one connection.
type Frame struct {
	// Type is the frame kind.
	Type FrameType `json:"type"`
	// ID correlates a call with its response.
	ID string `json:"id,omitempty"`
	// Channel is the method channel name.
	Channel string `json:"channel,omitempty"`
	// Call is set on call frames.
	Call *Envelope `json:"call,omitempty"`
	// Response is set on response frames.
	Response *Response `json:"response,omitempty"`
	// Event is set on event frames.
	Event *Event `json:"event,omitempty"`
	// Seq is the event sequence number assigned by the event log.
	Seq int64 `json:"seq,omitempty"`
}

// DecodeFrame parses a raw frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse frame: %w", err)
	}
	if f.Type == FrameTypeCall && (f.Call == nil || f.Call.Method == "") {
		return nil, fmt.Errorf("call frame without method")
	}
	return &f, nil
}
