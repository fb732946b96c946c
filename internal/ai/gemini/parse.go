package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/qri-io/jsonschema"
)

func mustSchema(data []byte) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(data, rs); err != nil {
		panic(fmt.Sprintf("compile response schema: %v", err))
	}
	return rs
}

// validateJSON checks the shape of a model answer before it is decoded.
func validateJSON(ctx context.Context, schema *jsonschema.Schema, data string) error {
	verrs, err := schema.ValidateBytes(ctx, []byte(data))
	if err != nil {
		return fmt.Errorf("parse gemini response: %w", err)
	}
	if len(verrs) == 0 {
		return nil
	}

	messages := make([]string, 0, len(verrs))
	for _, v := range verrs {
		messages = append(messages, strings.TrimSpace(v.PropertyPath+" "+v.Message))
	}
	return fmt.Errorf("gemini response does not match schema: %s", strings.Join(messages, "; "))
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}

// sanitizeLine collapses a user supplied value into a single line so it
// cannot open a new section of the prompt.
func sanitizeLine(value string) string {
	value = strings.Map(func(r rune) rune {
		switch r {
		case '[':
			return '('
		case ']':
			return ')'
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, value)

	return strings.Join(strings.Fields(value), " ")
}
