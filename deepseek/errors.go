package deepseek

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the client can return.
type Kind int

const (
	KindMissingCredential Kind = iota + 1
	KindNetwork
	KindSerialization
	KindUnauthorized
	KindForbidden
	KindInsufficientBalance
	KindRateLimited
	KindServer
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindNetwork:
		return "network"
	case KindSerialization:
		return "serialization"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindAPI:
		return "api"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type returned by this package.
//
// Status is set for KindServer and KindAPI (and for the other service-reported
// kinds). Message carries the service's message for KindAPI. Err holds the
// underlying cause for KindNetwork and KindSerialization.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Type    string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingCredential:
		return "missing API key (set " + EnvAPIKey + ")"
	case KindNetwork:
		return fmt.Sprintf("http error: %v", e.Err)
	case KindSerialization:
		return fmt.Sprintf("serialization error: %v", e.Err)
	case KindUnauthorized:
		return "unauthorized: check the API key"
	case KindForbidden:
		return "forbidden"
	case KindInsufficientBalance:
		return "insufficient balance"
	case KindRateLimited:
		return "rate limited"
	case KindServer:
		return fmt.Sprintf("server error (status %d)", e.Status)
	default:
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the Err*
// sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether repeating the same request may succeed. The
// client never retries on its own.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimited, KindServer:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is. Do not mutate.
var (
	ErrMissingCredential   = &Error{Kind: KindMissingCredential}
	ErrNetwork             = &Error{Kind: KindNetwork}
	ErrSerialization       = &Error{Kind: KindSerialization}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance}
	ErrRateLimited         = &Error{Kind: KindRateLimited}
	ErrServer              = &Error{Kind: KindServer}
	ErrAPI                 = &Error{Kind: KindAPI}
)

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

func serializationError(err error) *Error {
	return &Error{Kind: KindSerialization, Err: err}
}
