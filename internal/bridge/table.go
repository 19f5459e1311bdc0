package bridge

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/codec"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// FaultError is a native operation fault caught at a handler boundary.
type FaultError struct {
	Method string
	Code   string
	Cause  error
}

// Error returns the native fault message, which is what reaches the caller.
func (e *FaultError) Error() string {
	if e.Cause == nil {
		return e.Code
	}
	return e.Cause.Error()
}

// Unwrap returns the underlying fault.
func (e *FaultError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Entry is one row of a command table: a decoder and a handler bound to a
// method name and its fault code.
type Entry struct {
	Method    string
	ErrorCode string
	run       func(args codec.Args, res Result) error
}

// Sync builds an entry whose handler returns its result directly.
// A nil result resolves as void.
func Sync[Req any](method, code string, decode func(codec.Args) (Req, error), handle func(Req) (any, error)) Entry {
	return Entry{
		Method:    method,
		ErrorCode: code,
		run: func(args codec.Args, res Result) error {
			req, err := decode(args)
			if err != nil {
				return err
			}
			data, err := handle(req)
			if err != nil {
				return err
			}
			res.Success(data)
			return nil
		},
	}
}

// Async builds an entry whose handler resolves res later from a native
// completion. A returned error means the native call never started.
func Async[Req any](method, code string, decode func(codec.Args) (Req, error), handle func(Req, Result) error) Entry {
	return Entry{
		Method:    method,
		ErrorCode: code,
		run: func(args codec.Args, res Result) error {
			req, err := decode(args)
			if err != nil {
				return err
			}
			return handle(req, res)
		},
	}
}

// Table maps command names to entries. It is immutable after construction.
type Table struct {
	logger  *zap.Logger
	entries map[string]Entry
}

// NewTable builds a table. Duplicate method names panic.
func NewTable(logger *zap.Logger, entries ...Entry) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{logger: logger, entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := t.entries[e.Method]; dup {
			panic(fmt.Sprintf("bridge: duplicate command %q", e.Method))
		}
		t.entries[e.Method] = e
	}
	return t
}

// Len returns the number of registered commands.
func (t *Table) Len() int {
	return len(t.entries)
}

// Has reports whether method has an entry.
func (t *Table) Has(method string) bool {
	_, ok := t.entries[method]
	return ok
}

// Dispatch routes env to its entry and resolves res. Unknown methods resolve
// as not implemented. Decode failures and handler faults resolve as errors;
// nothing propagates to the caller.
func (t *Table) Dispatch(env protocol.Envelope, res Result) {
	entry, ok := t.entries[env.Method]
	if !ok {
		t.logger.Debug("Command not implemented", zap.String("method", env.Method))
		res.NotImplemented()
		return
	}

	if err := t.invoke(entry, codec.Args(env.Arguments), res); err != nil {
		code, message := t.classify(entry, err)
		res.Error(code, message, nil)
	}
}

func (t *Table) invoke(entry Entry, args codec.Args, res Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Command handler panicked",
				zap.String("method", entry.Method),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = &PanicError{Value: r}
		}
	}()
	return entry.run(args, res)
}

func (t *Table) classify(entry Entry, err error) (string, string) {
	var missing *codec.MissingParameterError
	var invalid *codec.InvalidArgumentError
	switch {
	case errors.As(err, &missing):
		t.logger.Debug("Missing parameter",
			zap.String("method", entry.Method),
			zap.String("field", missing.Field))
		return protocol.ErrCodeMissingParameter, err.Error()
	case errors.As(err, &invalid):
		t.logger.Debug("Invalid argument",
			zap.String("method", entry.Method),
			zap.String("field", invalid.Field))
		return protocol.ErrCodeInvalidArguments, err.Error()
	default:
		fault := &FaultError{Method: entry.Method, Code: entry.ErrorCode, Cause: err}
		t.logger.Warn("Native operation failed",
			zap.String("method", entry.Method),
			zap.String("code", fault.Code),
			zap.Error(fault))
		return fault.Code, fault.Error()
	}
}
