package grok

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// extractJSON pulls the first balanced JSON object out of a model answer,
// tolerating markdown fences and surrounding prose. Returns "" when none.
func extractJSON(answer string) string {
	answer = strings.ReplaceAll(answer, "```json", "")
	answer = strings.ReplaceAll(answer, "```", "")
	answer = strings.TrimSpace(answer)

	start := strings.Index(answer, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(answer); i++ {
		ch := answer[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return answer[start : i+1]
			}
		}
	}
	return ""
}

// decodeObject extracts and decodes the answer's JSON object.
func decodeObject(answer string) (map[string]any, bool) {
	raw := extractJSON(answer)
	if raw == "" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, false
	}
	return m, true
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

func toInt(v any) int {
	return int(math.Round(toFloat(v)))
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(x))
		if !b {
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "yes", "y":
				return true
			}
		}
		return b
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	}
	return false
}

func toStrings(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if s := toString(e); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, p := range strings.Split(x, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// lowerOr normalizes an enum-like answer, falling back to def when empty.
func lowerOr(v any, def string) string {
	s := strings.ToLower(toString(v))
	if s == "" {
		return def
	}
	return s
}
