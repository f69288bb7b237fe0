package jsonx

import (
	"encoding/json"
	"strings"
)

// FirstArray returns the first balanced [...] span in text that parses as JSON.
// Returns "" when no such span exists. Model output often wraps JSON in prose
// ("Sure! Here are the questions: [...]"), so we scan rather than unmarshal directly.
func FirstArray(text string) string {
	return firstSpan(text, '[', ']')
}

// FirstObject returns the first balanced {...} span in text that parses as JSON.
// Returns "" when no such span exists.
func FirstObject(text string) string {
	return firstSpan(text, '{', '}')
}

// firstSpan walks the text looking for an opening bracket, then tracks nesting
// depth until the matching close. String literals and escapes are honored so
// brackets inside quoted values don't unbalance the scan. Candidate spans that
// fail json.Valid are skipped and the scan resumes after their opening bracket,
// which keeps prose like "use [brackets] like this" from shadowing a later
// real JSON payload.
func firstSpan(text string, open, close byte) string {
	for start := 0; start < len(text); start++ {
		idx := strings.IndexByte(text[start:], open)
		if idx < 0 {
			return ""
		}
		start += idx

		if span, ok := scanBalanced(text[start:], open, close); ok {
			if json.Valid([]byte(span)) {
				return span
			}
		}
	}
	return ""
}

func scanBalanced(text string, open, close byte) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}

	return "", false
}

// DecodeArray extracts the first JSON array from text and unmarshals it into out.
// A missing or malformed array is not an error: out is left untouched and false
// is returned. Generation stages degrade silently on parse failure.
func DecodeArray(text string, out interface{}) bool {
	span := FirstArray(text)
	if span == "" {
		return false
	}
	return json.Unmarshal([]byte(span), out) == nil
}

// DecodeObject is DecodeArray for the first JSON object in text.
func DecodeObject(text string, out interface{}) bool {
	span := FirstObject(text)
	if span == "" {
		return false
	}
	return json.Unmarshal([]byte(span), out) == nil
}
