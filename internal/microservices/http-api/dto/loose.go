package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LooseString decodes a JSON string, number or boolean into its text form.
// Spreadsheet exports are inconsistent about quoting issue numbers.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*s = LooseString(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*s = LooseString(strconv.FormatBool(v))
	default:
		*s = LooseString(strings.TrimSpace(string(data)))
	}
	return nil
}

func (s LooseString) String() string {
	return strings.TrimSpace(string(s))
}

// fields holds a decoded object whose keys may come in several spellings.
type fields map[string]LooseString

func decodeFields(data []byte) (fields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(fields, len(raw))
	for k, v := range raw {
		var s LooseString
		// nested objects and arrays are not row values
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		out[k] = s
	}
	return out, nil
}

// pick returns the first non-blank value among keys.
func (f fields) pick(keys ...string) string {
	for _, k := range keys {
		if v := f[k].String(); v != "" {
			return v
		}
	}
	return ""
}

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}
