// Package parser extracts machine-readable FAQ entries from free-form
// language model output. Responses are not guaranteed to be clean JSON:
// they may wrap the payload in a markdown fence, prepend a chain of
// thought section, or mix malformed entries into the array.
package parser

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// RawFaq is one question/answer pair as parsed from model output, before
// any normalization.
type RawFaq struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var (
	fencedBlockPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	arrayShapePattern  = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	obtainedPattern    = regexp.MustCompile(`得られます[：:]`)
)

// cotMarker is the literal section heading the FAQ prompt instructs the
// model to emit before its reasoning. The structured answer follows the
// reasoning, so when this marker is present the fence search is re-run on
// the text after it.
const cotMarker = "思考過程"

var logger = log.New(log.Writer(), "[PARSER] ", log.LstdFlags)

// Parse extracts FAQ entries from a raw model response. It never panics;
// a malformed or structureless response yields an empty slice and an
// error describing why, with the offending text truncated in the log.
// Elements missing a question or an answer are dropped silently.
func Parse(raw string) ([]RawFaq, error) {
	candidate, fenced := extractPayload(raw)

	if !fenced && strings.Contains(raw, cotMarker) {
		if _, after, found := strings.Cut(raw, cotMarker+":"); found {
			if block, ok := fencedBlock(after); ok {
				candidate = block
			}
		}
	}
	if !fenced && strings.Contains(raw, "得られます") {
		if loc := obtainedPattern.FindStringIndex(raw); loc != nil {
			if block, ok := fencedBlock(raw[loc[1]:]); ok {
				candidate = block
			}
		}
	}

	faqs, err := decodeArray(candidate)
	if err != nil {
		logger.Printf("parse failed: %v (response: %s)", err, truncate(raw, 100))
		return nil, err
	}
	return faqs, nil
}

// extractPayload picks the candidate JSON text: a fenced code block if
// present, otherwise the first array-of-objects shaped substring,
// otherwise the whole response.
func extractPayload(raw string) (payload string, fenced bool) {
	if block, ok := fencedBlock(raw); ok {
		return block, true
	}
	if strings.Contains(raw, "[") && strings.Contains(raw, "]") {
		if m := arrayShapePattern.FindString(raw); m != "" {
			return m, false
		}
	}
	return raw, false
}

func fencedBlock(text string) (string, bool) {
	m := fencedBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func decodeArray(candidate string) ([]RawFaq, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &elements); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	faqs := make([]RawFaq, 0, len(elements))
	for _, element := range elements {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(element, &entry); err != nil {
			continue // non-object element
		}
		var faq RawFaq
		if err := json.Unmarshal(element, &faq); err != nil {
			continue
		}
		if _, hasQ := entry["question"]; !hasQ {
			continue
		}
		if _, hasA := entry["answer"]; !hasA {
			continue
		}
		faqs = append(faqs, faq)
	}
	return faqs, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
