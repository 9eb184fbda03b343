package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseLLMJSON extracts and parses a JSON object from LLM output that may
// contain pure JSON, JSON wrapped in markdown code fences, or JSON with
// surrounding prose. A final cleanup pass fixes common model mistakes
// (trailing commas, unquoted keys, control characters).
func ParseLLMJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	if extracted := FirstJSONObject(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
		if cleaned := cleanJSON(extracted); cleaned != "" {
			if err := json.Unmarshal([]byte(cleaned), target); err == nil {
				return nil
			}
		}
	}

	if cleaned := cleanJSON(input); cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncate(input, 100))
}

var markdownFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// extractFromMarkdown pulls the body out of a ```json ... ``` fence.
func extractFromMarkdown(input string) string {
	matches := markdownFenceRe.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	content := strings.TrimSpace(matches[1])
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		return content
	}
	return ""
}

// FirstJSONObject returns the first balanced {...} object found in the
// input, honoring string literals and escapes, or "" when none exists.
func FirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(input); i++ {
		ch := input[i]
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharRe   = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F]")
)

// cleanJSON fixes common formatting issues in model-produced JSON.
func cleanJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = controlCharRe.ReplaceAllString(s, "")
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
