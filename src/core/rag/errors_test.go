package rag_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"docvault/src/core/rag"
)

func TestWrapErrPreservesTypedCause(t *testing.T) {
	cause := rag.E(rag.KindInvalidInput, rag.StageEmbedding, "empty text")
	wrapped := rag.WrapErr(rag.KindInternal, rag.StageStorage, "insert failed", cause)

	if wrapped.Kind != rag.KindInvalidInput {
		t.Errorf("Kind = %s, want %s", wrapped.Kind, rag.KindInvalidInput)
	}
	if wrapped.Stage != rag.StageEmbedding {
		t.Errorf("Stage = %s, want %s", wrapped.Stage, rag.StageEmbedding)
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("wrapped error does not unwrap to cause")
	}
}

func TestWrapErrPlainCause(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := rag.WrapErr(rag.KindUpstream, rag.StageGeneration, "generate failed", cause)

	if wrapped.Kind != rag.KindUpstream {
		t.Errorf("Kind = %s, want %s", wrapped.Kind, rag.KindUpstream)
	}
	if wrapped.Stage != rag.StageGeneration {
		t.Errorf("Stage = %s, want %s", wrapped.Stage, rag.StageGeneration)
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("wrapped error does not unwrap to cause")
	}
}

func TestWrapErrTypedCauseThroughFmtWrap(t *testing.T) {
	cause := rag.E(rag.KindNotFound, rag.StageRetrieval, "no such document")
	middle := fmt.Errorf("lookup: %w", cause)
	wrapped := rag.WrapErr(rag.KindInternal, rag.StageStorage, "outer", middle)

	if wrapped.Kind != rag.KindNotFound {
		t.Errorf("Kind = %s, want %s", wrapped.Kind, rag.KindNotFound)
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind rag.Kind
		want bool
	}{
		{
			name: "direct match",
			err:  rag.E(rag.KindAccessDenied, rag.StageRetrieval, "wrong org"),
			kind: rag.KindAccessDenied,
			want: true,
		},
		{
			name: "wrapped match",
			err:  fmt.Errorf("outer: %w", rag.E(rag.KindUpstream, rag.StageEmbedding, "down")),
			kind: rag.KindUpstream,
			want: true,
		},
		{
			name: "kind mismatch",
			err:  rag.E(rag.KindInternal, rag.StageStorage, "oops"),
			kind: rag.KindInvalidInput,
			want: false,
		},
		{
			name: "untyped error",
			err:  errors.New("plain"),
			kind: rag.KindInternal,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			kind: rag.KindInternal,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rag.IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind(%v, %s) = %v, want %v", tt.err, tt.kind, got, tt.want)
			}
		})
	}
}

func TestErrorMessageCarriesStageAndKind(t *testing.T) {
	err := rag.WrapErr(rag.KindUpstream, rag.StageEmbedding, "failed to embed question", errors.New("timeout"))
	msg := err.Error()
	for _, part := range []string{"embedding", "upstream_failure", "failed to embed question", "timeout"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error message %q missing %q", msg, part)
		}
	}
}
