package tiktok

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawItem is one upstream post record before normalization. The upstream
// is schema-unstable (camelCase vs snake_case, nested vs flat), so the
// record stays an untyped mapping and every field is resolved through an
// explicit alias-priority lookup.
type RawItem map[string]any

// dig walks a dotted path through nested string-keyed maps.
func dig(node any, path string) (any, bool) {
	cur := node
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// str resolves the first alias whose value is a non-empty string.
func (r RawItem) str(aliases ...string) string {
	for _, path := range aliases {
		if v, ok := dig(map[string]any(r), path); ok {
			if s := toString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// num resolves the first alias that parses to a number, defaulting to 0.
func (r RawItem) num(aliases ...string) int64 {
	for _, path := range aliases {
		if v, ok := dig(map[string]any(r), path); ok {
			if n, ok := toInt64(v); ok {
				return n
			}
		}
	}
	return 0
}

// boolean resolves the first alias holding a bool.
func (r RawItem) boolean(aliases ...string) bool {
	for _, path := range aliases {
		if v, ok := dig(map[string]any(r), path); ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// list resolves the first alias holding a non-empty array.
func (r RawItem) list(aliases ...string) []any {
	for _, path := range aliases {
		if v, ok := dig(map[string]any(r), path); ok {
			if arr, ok := v.([]any); ok && len(arr) > 0 {
				return arr
			}
		}
	}
	return nil
}

// urlAt resolves the first alias that yields a usable URL. The upstream
// exposes URLs as plain strings, as arrays, or as address objects with a
// url_list/urlList member; all three shapes are accepted.
func (r RawItem) urlAt(aliases ...string) string {
	for _, path := range aliases {
		if v, ok := dig(map[string]any(r), path); ok {
			if u := urlFrom(v); u != "" {
				return u
			}
		}
	}
	return ""
}

// urlFrom extracts a URL from any of the known URL value shapes.
func urlFrom(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		for _, e := range val {
			if s, ok := e.(string); ok && s != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"url_list", "urlList", "UrlList"} {
			if arr, ok := val[key].([]any); ok {
				for _, e := range arr {
					if s, ok := e.(string); ok && s != "" {
						return s
					}
				}
			}
		}
	}
	return ""
}

// toString renders scalar values as strings; non-scalars are empty.
func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		// Integral IDs arrive as float64 from encoding/json.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}

// toInt64 parses numbers defensively: absent or non-numeric values fail,
// letting the caller fall through to the next alias or default to zero.
func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case int64:
		return val, true
	case int:
		return int64(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		if f, err := val.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// sub returns the nested map at path as a RawItem for scoped lookups.
func (r RawItem) sub(path string) RawItem {
	if v, ok := dig(map[string]any(r), path); ok {
		if m, ok := v.(map[string]any); ok {
			return RawItem(m)
		}
	}
	return nil
}
