// Package reconcile recovers a single well-formed JSON object from an
// LLM's free-form text response. Models routinely wrap valid JSON in
// conversational prose or markdown code fences, and occasionally truncate
// mid-object; the structural brace scan below tolerates the wrapper text
// without needing a tolerant JSON parser, and fails closed on truncation.
package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoObject means the cleaned text contains no '{' at all.
	ErrNoObject = errors.New("reconcile: no JSON object found in response")

	// ErrUnbalancedBraces means an object was opened but never closed
	// (typically a truncated response). No partial recovery is attempted.
	ErrUnbalancedBraces = errors.New("reconcile: unbalanced braces in response")

	// ErrInvalidJSON means the braces balanced but the candidate text was
	// not parseable JSON (trailing commas, unescaped quotes, ...).
	ErrInvalidJSON = errors.New("reconcile: candidate is not valid JSON")
)

// fencePattern matches triple-backtick code-fence markers, with or without
// a language tag (```json, ```JSON, ``` ...).
var fencePattern = regexp.MustCompile("```[a-zA-Z0-9]*")

// Object extracts and parses the first balanced JSON object in rawText.
//
// Steps: strip every code-fence marker (pure text substitution, nothing is
// validated here), locate the first '{', then scan with a brace-depth
// counter until it returns to zero. Only then is a real JSON parse run on
// the candidate substring.
func Object(rawText string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(rawText, ""))

	start := strings.Index(cleaned, "{")
	if start == -1 {
		return nil, ErrNoObject
	}

	depth := 0
	end := -1
	for i := start; i < len(cleaned); i++ {
		switch cleaned[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil, ErrUnbalancedBraces
	}

	candidate := cleaned[start : end+1]

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return parsed, nil
}
