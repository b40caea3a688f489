// Package cerr defines the compiler's error sum type. Every error that can
// escape a compile invocation is one of the Kinds below; nothing else
// propagates to the CLI boundary.
package cerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind identifies one of the compiler's error categories.
type Kind string

const (
	KindBadHex            Kind = "BadHex"
	KindEmpty             Kind = "Empty"
	KindUnsupportedOpcode Kind = "UnsupportedOpcode"
	KindSolcFailed        Kind = "SolcFailed"
	KindIoError           Kind = "IoError"
	KindMergeError        Kind = "MergeError"
	KindConfigError       Kind = "ConfigError"
	KindMissingSymbol     Kind = "RuntimeMissingSymbol"
)

// Error is the concrete error type carried across package boundaries. It
// wraps an underlying cause (via cockroachdb/errors so detail/hints survive
// re-wrapping) with a Kind and a short human context string.
type Error struct {
	Kind    Kind
	Context string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", string(e.Kind), e.Context, e.cause)
	}
	return fmt.Sprintf("%s: %s", string(e.Kind), e.Context)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no underlying cause.
func New(kind Kind, context string) *Error {
	return &Error{Kind: kind, Context: context}
}

// Wrap builds an Error that chains an existing error, attaching it via
// cockroachdb/errors' WithStack so structured detail attached upstream
// (WithDetail, WithHint) stays in the chain. Error() appends only the
// cause's message.
func Wrap(kind Kind, context string, cause error) *Error {
	if cause == nil {
		return New(kind, context)
	}
	return &Error{Kind: kind, Context: context, cause: errors.WithStack(cause)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// CLILine renders the error the way the CLI boundary prints it:
// "evm2wasm: <kind>: <context>[: <cause>]".
func CLILine(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return "evm2wasm: " + e.Error()
	}
	return "evm2wasm: " + err.Error()
}
