// Package pipeline turns raw multi-platform listings into a deduplicated,
// consolidated and classified property catalog.
package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// fieldAliases maps a logical field to the raw keys that may carry it,
// in priority order. Platforms disagree on naming; resolution picks the
// first alias that is present and truthy.
var fieldAliases = map[string][]string{
	"address":        {"address_full", "address"},
	"street":         {"address_street"},
	"city":           {"address_city", "city"},
	"state":          {"address_state", "state"},
	"zip":            {"address_zip", "zip", "zipcode"},
	"property_type":  {"homeType", "property_type"},
	"area":           {"area", "square_feet", "sqft"},
	"price":          {"unformattedPrice", "price"},
	"days_on_market": {"daysOnZillow", "days_on_market"},
}

func aliasesFor(field string) []string {
	if al, ok := fieldAliases[field]; ok {
		return al
	}
	return []string{field}
}

// lookupAny walks a dot path through nested maps.
func lookupAny(m map[string]any, path string) (any, bool) {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = mm[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// firstRaw resolves a logical field to the first alias whose value is
// present and truthy. Falsy values (empty string, zero, false, nil) fall
// through to the next alias.
func firstRaw(m map[string]any, field string) (any, bool) {
	for _, key := range aliasesFor(field) {
		if v, ok := lookupAny(m, key); ok && truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// firstString resolves a logical field to its first truthy string value.
// A truthy non-string value stops the chain and resolves to absent.
func firstString(m map[string]any, field string) string {
	v, ok := firstRaw(m, field)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// firstFloat resolves a logical field to its first truthy value coerced to
// a float. A truthy value that cannot be coerced stops the chain.
func firstFloat(m map[string]any, field string) (float64, bool) {
	v, ok := firstRaw(m, field)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// firstInt resolves a logical field to its first truthy value coerced to
// an int. Floats truncate; strings must be plain integers.
func firstInt(m map[string]any, field string) (int, bool) {
	v, ok := firstRaw(m, field)
	if !ok {
		return 0, false
	}
	return asInt(v)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	default:
		return 0, false
	}
}

// truthy mirrors permissive feed semantics: empty strings, zero numbers,
// false and nil all read as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// strOf renders a raw value for joining into synthesized text. Numbers
// render without a trailing ".0" so 98101.0 reads as a ZIP.
func strOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
