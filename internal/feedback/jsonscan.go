package feedback

import "strings"

// FindJSONSpan returns the substring from the first '{' to the last '}' of
// text. The span is greedy, so prose or code fences around a single object are
// dropped while braces inside it are kept.
func FindJSONSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
