// Package codec decodes untyped command arguments into typed requests.
//
// Every decode function is pure: it reads an Args mapping and returns a typed
// request or a *MissingParameterError / *InvalidArgumentError. Nothing here
// touches a native SDK.
package codec

import (
	"encoding/json"
	"math"
)

// Args is the untyped argument mapping of a command envelope.
// A key mapped to nil is treated as absent.
type Args map[string]any

// Has reports whether key is present with a non-null value.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns an optional string argument.
func (a Args) String(key string) (*string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(key, "string", v)
	}
	return &s, nil
}

// RequiredString returns a required string argument.
func (a Args) RequiredString(key string) (string, error) {
	s, err := a.String(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", missing(key)
	}
	return *s, nil
}

// Bool returns an optional boolean argument.
func (a Args) Bool(key string) (*bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, invalid(key, "bool", v)
	}
	return &b, nil
}

// RequiredBool returns a required boolean argument.
func (a Args) RequiredBool(key string) (bool, error) {
	b, err := a.Bool(key)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, missing(key)
	}
	return *b, nil
}

// Float32 returns an optional numeric argument normalized to float32.
// Any Go numeric type and json.Number are accepted.
func (a Args) Float32(key string) (*float32, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := toFloat64(v)
	if !ok {
		return nil, invalid(key, "number", v)
	}
	out := float32(f)
	return &out, nil
}

// Map returns an optional nested mapping argument.
func (a Args) Map(key string) (map[string]any, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		if args, isArgs := v.(Args); isArgs {
			return map[string]any(args), nil
		}
		return nil, invalid(key, "map", v)
	}
	return m, nil
}

// RequiredMap returns a required nested mapping argument.
func (a Args) RequiredMap(key string) (map[string]any, error) {
	m, err := a.Map(key)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, missing(key)
	}
	return m, nil
}

// StringList returns an optional list of strings. Both []string and []any
// holding only strings are accepted.
func (a Args) StringList(key string) ([]string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(key, "list of strings", v)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalid(key, "list of strings", v)
	}
}

// RequiredStringList returns a required list of strings.
func (a Args) RequiredStringList(key string) ([]string, error) {
	list, err := a.StringList(key)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, missing(key)
	}
	return list, nil
}

// Sub returns the nested mapping under key as Args, or nil when absent.
func (a Args) Sub(key string) (Args, error) {
	m, err := a.Map(key)
	if err != nil || m == nil {
		return nil, err
	}
	return Args(m), nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is a numeric value Float32 would accept.
func IsNumber(v any) bool {
	_, ok := toFloat64(v)
	return ok
}
