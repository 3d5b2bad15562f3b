package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Models are asked to return bare JSON but routinely wrap it in markdown
// fences or prose anyway.
var (
	jsonBlockPattern  = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
)

// ExtractJSON extracts a JSON object from a model response. It tries a direct
// parse first, then the contents of a fenced code block, then the outermost
// braces. An empty return means no parseable object was found; partial or
// guessed data is never returned.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "{") && json.Valid([]byte(content)) {
		return content
	}
	if matches := jsonBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		if json.Valid([]byte(matches[1])) {
			return matches[1]
		}
	}
	if match := jsonObjectPattern.FindString(content); match != "" {
		if json.Valid([]byte(match)) {
			return match
		}
	}
	return ""
}
