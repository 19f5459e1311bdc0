package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// StringifyPayload converts a push payload to the string-valued mapping the
// native classifiers accept. The conversion is lossy: numbers, booleans and
// nested values become their string form. Both platforms use this function so
// the same input always classifies the same way.
func StringifyPayload(payload map[string]any) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = StringifyValue(v)
	}
	return out
}

// StringifyValue renders a single payload value.
func StringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
