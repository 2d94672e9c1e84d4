package api

import (
	"errors"
	"fmt"
)

// Kind classifies why an API call failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport: the request never produced a response.
	KindTransport
	// KindStatus: the server answered with a non-2xx status.
	KindStatus
	// KindDecode: the response body did not match the expected shape.
	KindDecode
	// KindInvalid: the call was rejected before any request was sent.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method.
type Error struct {
	Op     string // "GET /api/hobbies/"
	Kind   Kind
	Status int    // HTTP status, KindStatus only
	Detail string // response body text or a short reason
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus && e.Detail != "":
		return fmt.Sprintf("%s returned %d: %s", e.Op, e.Status, e.Detail)
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s returned %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Invalid reports a call rejected before any request was sent.
func Invalid(op, reason string) error {
	return &Error{Op: op, Kind: KindInvalid, Detail: reason}
}
