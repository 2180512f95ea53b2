package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	attributedomain "github.com/wanderkit/placesync/internal/attribute/domain"
)

var (
	// ErrNotANumber means the raw value could not be parsed for a number
	// attribute. The write is skipped; any prior value stays untouched.
	ErrNotANumber = errors.New("value is not a number")
	// ErrUnknownKind means the attribute carries a kind this pipeline does
	// not understand. A data-quality signal, not a pipeline fault.
	ErrUnknownKind = errors.New("unknown attribute kind")
)

// TypedValue is the tagged representation of one stored value. The Kind tag
// decides which payload field is authoritative; the others are zero.
type TypedValue struct {
	Kind   attributedomain.Kind
	Text   string
	Number float64
	Bool   bool
	JSON   any
	Option string
}

func TextValue(s string) TypedValue {
	return TypedValue{Kind: attributedomain.KindText, Text: s}
}

func NumberValue(f float64) TypedValue {
	return TypedValue{Kind: attributedomain.KindNumber, Number: f}
}

func BoolValue(b bool) TypedValue {
	return TypedValue{Kind: attributedomain.KindBoolean, Bool: b}
}

func JSONValue(v any) TypedValue {
	return TypedValue{Kind: attributedomain.KindJSON, JSON: v}
}

func OptionValue(s string) TypedValue {
	return TypedValue{Kind: attributedomain.KindOption, Option: s}
}

// Coerce converts a raw (post-translation) value into the tagged value its
// attribute kind demands. fellBack reports the json→text cross-kind
// fallback, which callers should surface as a data inconsistency.
func Coerce(kind attributedomain.Kind, raw any) (tv TypedValue, fellBack bool, err error) {
	switch kind {
	case attributedomain.KindText:
		return TextValue(stringify(raw)), false, nil

	case attributedomain.KindNumber:
		num, ok := toNumber(raw)
		if !ok {
			return TypedValue{}, false, ErrNotANumber
		}
		return NumberValue(num), false, nil

	case attributedomain.KindBoolean:
		if b, ok := raw.(bool); ok {
			return BoolValue(b), false, nil
		}
		return BoolValue(raw == "true"), false, nil

	case attributedomain.KindJSON:
		switch v := raw.(type) {
		case map[string]any, []any:
			return JSONValue(v), false, nil
		case string:
			trimmed := strings.TrimSpace(v)
			if looksLikeJSON(trimmed) {
				var parsed any
				if jsonErr := json.Unmarshal([]byte(trimmed), &parsed); jsonErr == nil {
					return JSONValue(parsed), false, nil
				}
			}
			// Not parseable as JSON: store as text instead.
			return TextValue(v), true, nil
		default:
			return JSONValue(raw), false, nil
		}

	case attributedomain.KindOption:
		return OptionValue(stringify(raw)), false, nil

	default:
		return TypedValue{}, false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func looksLikeJSON(s string) bool {
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(encoded)
	default:
		return fmt.Sprint(t)
	}
}

func toNumber(v any) (float64, bool) {
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
