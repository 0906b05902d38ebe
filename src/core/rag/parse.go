package rag

import (
	"encoding/json"
	"strings"
)

// Generative backends are asked for JSON but answer in prose often enough
// that strict parsing would fail the whole pipeline. These parsers extract
// the first well-formed {...} block, clamp the values, and fall back to a
// safe default instead of returning an error.

const (
	// DefaultCategory is used when classification output cannot be parsed.
	DefaultCategory = "Other"
	// MaxTags caps the tag list regardless of what the model returns.
	MaxTags = 5
)

// ExtractJSONObject returns the first balanced top-level {...} block in s,
// tolerating surrounding prose. The boolean is false when no such block
// exists.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseClassification parses a generative classification response. Any
// parse failure yields the default classification rather than an error.
func ParseClassification(raw string) Classification {
	fallback := Classification{Category: DefaultCategory, Confidence: 0, Tags: []string{}}

	block, ok := ExtractJSONObject(raw)
	if !ok {
		return fallback
	}

	var parsed Classification
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return fallback
	}

	if strings.TrimSpace(parsed.Category) == "" {
		parsed.Category = DefaultCategory
	}
	parsed.Confidence = clamp01(parsed.Confidence)
	if parsed.Tags == nil {
		parsed.Tags = []string{}
	}
	if len(parsed.Tags) > MaxTags {
		parsed.Tags = parsed.Tags[:MaxTags]
	}
	return parsed
}

// ParseSummary parses a generative summarization response. When the JSON
// cannot be recovered, the raw text itself is returned as the summary so
// callers still get usable output.
func ParseSummary(raw string) Summary {
	fallback := Summary{Summary: strings.TrimSpace(raw), KeyPoints: []string{}}

	block, ok := ExtractJSONObject(raw)
	if !ok {
		return fallback
	}

	var parsed Summary
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return fallback
	}

	if strings.TrimSpace(parsed.Summary) == "" {
		parsed.Summary = fallback.Summary
	}
	if parsed.KeyPoints == nil {
		parsed.KeyPoints = []string{}
	}
	return parsed
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
