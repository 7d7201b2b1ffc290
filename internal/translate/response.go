package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var fenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// keys models like to wrap the array in, most likely first
var wrapperKeys = []string{"results", "translations", "data", "items"}

// turns a model reply into exactly want results
func parseResults(reply string, want int) ([]TranslationResult, error) {
	body := stripFences(reply)

	results, err := decodeResults(body)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			clip(body, 200),
		)
	}
	if len(results) != want {
		return nil, fmt.Errorf("expected %d results, got %d", want, len(results))
	}
	return results, nil
}

func stripFences(s string) string {
	s = fenceRegex.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(strings.ReplaceAll(s, "```", ""))
}

// doubles backslashes that do not begin a JSON escape, so a stray \N in a
// reply decodes as literal text
func escapeStrayBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		next := s[i+1]
		if !strings.ContainsRune(`"\/bfnrtu`, rune(next)) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
		sb.WriteByte(next)
		i++
	}
	return sb.String()
}

// finds the first JSON value in text that holds translation results,
// skipping any prose around it
func decodeResults(text string) ([]TranslationResult, error) {
	text = escapeStrayBackslashes(text)

	for start := strings.IndexAny(text, "[{"); start >= 0; {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&raw); err == nil {
			if results := resultsFrom(raw); len(results) > 0 {
				return results, nil
			}
		}

		next := strings.IndexAny(text[start+1:], "[{")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

// accepts a bare array or an object wrapping one
func resultsFrom(raw json.RawMessage) []TranslationResult {
	if results, ok := asResults(raw); ok {
		return results
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}

	keys := append([]string(nil), wrapperKeys...)
	rest := make([]string, 0, len(wrapper))
	for k := range wrapper {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	for _, k := range keys {
		field, ok := wrapper[k]
		if !ok {
			continue
		}
		if results, ok := asResults(field); ok {
			return results
		}
	}
	return nil
}

func asResults(raw json.RawMessage) ([]TranslationResult, bool) {
	var results []TranslationResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, anyText(results)
}

func anyText(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
