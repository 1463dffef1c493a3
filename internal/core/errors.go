// Package core holds the types shared across the query, LLM and agent
// packages: the closed error taxonomy and the graph backend interface.
package core

import (
	"errors"
	"fmt"

	"github.com/antflydb/ariadne/internal/cypher"
)

// Kind is the closed error taxonomy every user-visible failure in the
// system maps down to.
type Kind int

const (
	KindParse Kind = iota
	KindUnsupportedConstruct
	KindSemantic
	KindInvalidText
	KindValidation
	KindLLMTransport
	KindLLMFormat
	KindExecutor
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse_error"
	case KindUnsupportedConstruct:
		return "unsupported_construct"
	case KindSemantic:
		return "semantic_error"
	case KindInvalidText:
		return "invalid_text"
	case KindValidation:
		return "validation_error"
	case KindLLMTransport:
		return "llm_transport_error"
	case KindLLMFormat:
		return "llm_format_error"
	case KindExecutor:
		return "executor_error"
	case KindConfig:
		return "config_error"
	default:
		return "unknown_error"
	}
}

// Recoverable reports whether the agent loop may retry a translation
// after this error, per spec §7: parse/unsupported/semantic/validation
// failures feed back into the translator, everything else surfaces.
func (k Kind) Recoverable() bool {
	switch k {
	case KindParse, KindUnsupportedConstruct, KindSemantic, KindValidation:
		return true
	default:
		return false
	}
}

// Error is the single error shape surfaced to callers outside the
// cypher package: a Kind, a human message, an optional query span, and
// the wrapped cause for errors.Is/errors.As.
type Error struct {
	Kind    Kind
	Message string
	Span    *cypher.Span
	Cause   error
}

func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Span)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap classifies an error returned by the cypher package into a core
// Error carrying the right Kind and span. Errors that are already a
// *Error pass through unchanged.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	var parseErr *cypher.ParseError
	var unsupportedErr *cypher.UnsupportedError
	var semanticErr *cypher.SemanticError
	var invalidTextErr *cypher.InvalidTextError
	var invalidLiteralErr *cypher.InvalidLiteralError
	var validationErr *cypher.ValidationError

	switch {
	case errors.As(err, &parseErr):
		span := parseErr.Span
		return &Error{Kind: KindParse, Message: parseErr.Error(), Span: &span, Cause: err}
	case errors.As(err, &unsupportedErr):
		span := unsupportedErr.Span
		return &Error{Kind: KindUnsupportedConstruct, Message: unsupportedErr.Message, Span: &span, Cause: err}
	case errors.As(err, &semanticErr):
		span := semanticErr.Span
		return &Error{Kind: KindSemantic, Message: semanticErr.Message, Span: &span, Cause: err}
	case errors.As(err, &invalidTextErr):
		span := invalidTextErr.Span
		return &Error{Kind: KindInvalidText, Message: invalidTextErr.Error(), Span: &span, Cause: err}
	case errors.As(err, &invalidLiteralErr):
		span := invalidLiteralErr.Span
		return &Error{Kind: KindInvalidText, Message: invalidLiteralErr.Error(), Span: &span, Cause: err}
	case errors.As(err, &validationErr):
		span := validationErr.Span
		return &Error{Kind: KindValidation, Message: validationErr.Message, Span: &span, Cause: err}
	default:
		return &Error{Kind: KindExecutor, Message: err.Error(), Cause: err}
	}
}

// NewConfigError builds a KindConfig Error, the one kind with no query
// span since it always fires at startup before a query ever exists.
func NewConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}
