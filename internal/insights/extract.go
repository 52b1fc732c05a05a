package insights

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// Widest brace- or bracket-delimited span anywhere in the text.
	jsonPattern = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

	// Opening markdown fence with an optional language tag.
	fencePattern = regexp.MustCompile("^```[a-zA-Z0-9]*[ \t]*\n?")
)

// ExtractJSON pulls the JSON payload out of model output text. Models
// often wrap structured replies in prose or markdown fences; this takes
// the widest object or array span when one exists, and otherwise falls
// back to stripping a surrounding code fence and trimming whitespace.
func ExtractJSON(text string) string {
	if m := jsonPattern.FindString(text); m != "" {
		return m
	}

	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = fencePattern.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

// decode extracts the JSON in text and unmarshals it into v. Failures
// surface as *UnparseableError carrying the cleaned text.
func decode(text string, v any) error {
	cleaned := ExtractJSON(text)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &UnparseableError{Text: cleaned, Err: err}
	}
	return nil
}
