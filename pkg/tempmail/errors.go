package tempmail

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to react to it.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors outside this taxonomy.
	KindUnknown Kind = iota

	// KindUpstreamUnavailable means the upstream could not be reached, or the handshake kept
	// failing.
	KindUpstreamUnavailable

	// KindTokenMissing means the handshake succeeded without setting the anti-forgery cookie.
	KindTokenMissing

	// KindGenerationFailed means address generation succeeded without a usable address.
	KindGenerationFailed

	// KindMalformedResponse means a body could not be decoded into the expected shape.
	KindMalformedResponse

	// KindEmptyContent means the normalizer was handed an empty payload.
	KindEmptyContent

	// KindNoContent means the upstream answered a message request with an empty body.
	KindNoContent

	// KindUpstreamError means the upstream returned a non-success status.
	KindUpstreamError
)

var kindNames = map[Kind]string{
	KindUnknown:             "Unknown",
	KindUpstreamUnavailable: "UpstreamUnavailable",
	KindTokenMissing:        "TokenMissing",
	KindGenerationFailed:    "GenerationFailed",
	KindMalformedResponse:   "MalformedResponse",
	KindEmptyContent:        "EmptyContent",
	KindNoContent:           "NoContent",
	KindUpstreamError:       "UpstreamError",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for use with errors.Is; they match any Error of the same Kind.
var (
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrTokenMissing        = &Error{Kind: KindTokenMissing}
	ErrGenerationFailed    = &Error{Kind: KindGenerationFailed}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
	ErrEmptyContent        = &Error{Kind: KindEmptyContent}
	ErrNoContent           = &Error{Kind: KindNoContent}
	ErrUpstreamError       = &Error{Kind: KindUpstreamError}
)

// Error is a classified failure. Status holds the upstream HTTP status when one was received.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches targets of the same Kind. A target with a non-zero Status must also match status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, op string, status int, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Err: err}
}

// KindOf returns the Kind of the first Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf returns the upstream status recorded in err's chain, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
