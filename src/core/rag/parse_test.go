package rag_test

import (
	"reflect"
	"testing"

	"docvault/src/core/rag"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			input:  `{"a": 1}`,
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "object inside prose",
			input:  `Sure! Here is the result: {"a": 1} Hope that helps.`,
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "nested objects",
			input:  `{"a": {"b": 2}}`,
			want:   `{"a": {"b": 2}}`,
			wantOK: true,
		},
		{
			name:   "braces inside strings",
			input:  `{"text": "a } inside"} trailing`,
			want:   `{"text": "a } inside"}`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside string",
			input:  `{"text": "say \"}\" loud"}`,
			want:   `{"text": "say \"}\" loud"}`,
			wantOK: true,
		},
		{
			name:   "no object",
			input:  "plain prose without JSON",
			wantOK: false,
		},
		{
			name:   "unbalanced",
			input:  `{"a": 1`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rag.ExtractJSONObject(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractJSONObject(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want rag.Classification
	}{
		{
			name: "clean response",
			raw:  `{"category": "Finance", "confidence": 0.82, "tags": ["report", "q1"]}`,
			want: rag.Classification{Category: "Finance", Confidence: 0.82, Tags: []string{"report", "q1"}},
		},
		{
			name: "response wrapped in prose",
			raw:  `The classification is: {"category": "Legal", "confidence": 0.5, "tags": []}. Let me know!`,
			want: rag.Classification{Category: "Legal", Confidence: 0.5, Tags: []string{}},
		},
		{
			name: "unparseable falls back",
			raw:  "I could not classify this document.",
			want: rag.Classification{Category: rag.DefaultCategory, Confidence: 0, Tags: []string{}},
		},
		{
			name: "confidence clamped high",
			raw:  `{"category": "HR", "confidence": 3.5, "tags": []}`,
			want: rag.Classification{Category: "HR", Confidence: 1, Tags: []string{}},
		},
		{
			name: "confidence clamped low",
			raw:  `{"category": "HR", "confidence": -0.2, "tags": []}`,
			want: rag.Classification{Category: "HR", Confidence: 0, Tags: []string{}},
		},
		{
			name: "tags capped at five",
			raw:  `{"category": "Ops", "confidence": 0.9, "tags": ["a","b","c","d","e","f","g"]}`,
			want: rag.Classification{Category: "Ops", Confidence: 0.9, Tags: []string{"a", "b", "c", "d", "e"}},
		},
		{
			name: "blank category defaults",
			raw:  `{"category": "  ", "confidence": 0.4, "tags": []}`,
			want: rag.Classification{Category: rag.DefaultCategory, Confidence: 0.4, Tags: []string{}},
		},
		{
			name: "missing tags become empty slice",
			raw:  `{"category": "Sales", "confidence": 0.7}`,
			want: rag.Classification{Category: "Sales", Confidence: 0.7, Tags: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rag.ParseClassification(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseClassification() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want rag.Summary
	}{
		{
			name: "clean response",
			raw:  `{"summary": "Quarterly results improved.", "key_points": ["revenue up", "costs flat"]}`,
			want: rag.Summary{Summary: "Quarterly results improved.", KeyPoints: []string{"revenue up", "costs flat"}},
		},
		{
			name: "prose response used verbatim",
			raw:  "  The document describes the hiring plan.  ",
			want: rag.Summary{Summary: "The document describes the hiring plan.", KeyPoints: []string{}},
		},
		{
			name: "blank summary falls back to raw",
			raw:  `{"summary": "", "key_points": ["a"]}`,
			want: rag.Summary{Summary: `{"summary": "", "key_points": ["a"]}`, KeyPoints: []string{"a"}},
		},
		{
			name: "missing key points become empty slice",
			raw:  `{"summary": "Short."}`,
			want: rag.Summary{Summary: "Short.", KeyPoints: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rag.ParseSummary(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSummary() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
