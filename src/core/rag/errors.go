package rag

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so callers can map it to a stable
// status without inspecting message text.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindAccessDenied    Kind = "access_denied"
	KindUpstream        Kind = "upstream_failure"
	KindInvalidResponse Kind = "invalid_response"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Stage identifies which part of the pipeline produced a failure, so an
// operator can tell a provider outage apart from a data problem.
type Stage string

const (
	StageChunking   Stage = "chunking"
	StageEmbedding  Stage = "embedding"
	StageRetrieval  Stage = "retrieval"
	StageGeneration Stage = "generation"
	StageStorage    Stage = "storage"
)

// Error is the typed failure returned by every component in this package
// and its backends.
type Error struct {
	Kind  Kind
	Stage Stage
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Stage, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s", e.Stage, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a typed error without an underlying cause.
func E(kind Kind, stage Stage, msg string) *Error {
	return &Error{Kind: kind, Stage: stage, Msg: msg}
}

// Ef builds a typed error with a formatted message.
func Ef(kind Kind, stage Stage, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

// WrapErr wraps an underlying cause with kind and stage. A cause that is
// already a *Error keeps its original kind and stage.
func WrapErr(kind Kind, stage Stage, msg string, err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return &Error{Kind: typed.Kind, Stage: typed.Stage, Msg: msg, Err: err}
	}
	return &Error{Kind: kind, Stage: stage, Msg: msg, Err: err}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var typed *Error
	return errors.As(err, &typed) && typed.Kind == kind
}
