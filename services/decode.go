package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"go_procure_backend/pkg/errs"
)

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// stripCodeFence drops the fence delimiter lines when the raw text
// starts with a ``` block, returning the inner content.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// decodeModelJSON parses a model response into v: fence strip, direct
// parse, then a pattern search for the first bracket- or brace-delimited
// span. Failure after all three is a DecodeError.
func decodeModelJSON(raw string, v interface{}, pattern *regexp.Regexp) error {
	s := stripCodeFence(raw)
	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}
	if span := pattern.FindString(s); span != "" {
		if err2 := json.Unmarshal([]byte(span), v); err2 == nil {
			return nil
		}
	}
	return &errs.DecodeError{Raw: raw, Err: err}
}

// truncateForReason keeps failure causes auditable without flooding the
// persisted reason column.
func truncateForReason(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
