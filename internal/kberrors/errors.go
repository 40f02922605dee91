// Package kberrors defines the failure kinds surfaced by the queue and
// generation workflow. Every failure that reaches an admin caller carries
// exactly one Kind; anything unclassified is KindInternal.
package kberrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConnectivity
	KindProtocol
	KindLicense
	KindAPI
	KindConfiguration
)

var kindNames = map[Kind]string{
	KindInternal:      "internal",
	KindValidation:    "validation",
	KindNotFound:      "not_found",
	KindConnectivity:  "connectivity",
	KindProtocol:      "protocol",
	KindLicense:       "license",
	KindAPI:           "api",
	KindConfiguration: "configuration",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is a classified failure. Message is safe to show to an operator;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same kind with no message,
// so errors.Is(err, kberrors.ErrNotFound) matches any not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Op == ""
}

// Sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConnectivity  = &Error{Kind: KindConnectivity}
	ErrProtocol      = &Error{Kind: KindProtocol}
	ErrLicense       = &Error{Kind: KindLicense}
	ErrAPI           = &Error{Kind: KindAPI}
	ErrConfiguration = &Error{Kind: KindConfiguration}
)

// New returns a classified error without an underlying cause.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func Validation(op, message string) error    { return New(KindValidation, op, message) }
func NotFound(op, message string) error      { return New(KindNotFound, op, message) }
func Configuration(op, message string) error { return New(KindConfiguration, op, message) }
func License(op, message string) error       { return New(KindLicense, op, message) }
func API(op, message string) error           { return New(KindAPI, op, message) }

func Connectivity(op, message string, err error) error {
	return &Error{Kind: KindConnectivity, Op: op, Message: message, Err: err}
}

func Protocol(op, message string, err error) error {
	return &Error{Kind: KindProtocol, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the operator-facing message for err. Internal failures
// get a generic message so storage details do not leak to the admin UI.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Kind != KindInternal && e.Err != nil {
			return e.Err.Error()
		}
	}
	return "An internal error occurred. Please try again."
}
