package client

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/message"

	"github.com/oftx/dailyfortune/internal/i18n"
)

// Kind classifies a client failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRequest
	KindNetwork
	KindInvalidResponse
	KindHTTP
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindNetwork:
		return "network"
	case KindInvalidResponse:
		return "invalid response"
	case KindHTTP:
		return "http"
	case KindDecoding:
		return "decoding"
	default:
		return "unknown"
	}
}

// Error is a classified client failure wrapping its cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// KindOf classifies err. Errors not produced by this package are KindUnknown.
func KindOf(err error) Kind {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return KindHTTP
	}
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Kind
	}
	return KindUnknown
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsCanceled reports whether err comes from a canceled context.
// Callers drop these silently.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Message returns the text to show a user for err: the server message for
// HTTP errors, otherwise a localized fallback for the error's kind.
func Message(err error, p *message.Printer) string {
	if err == nil {
		return ""
	}
	if p == nil {
		p = i18n.Printer(i18n.Default())
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	var clientErr *Error
	if !errors.As(err, &clientErr) {
		return p.Sprintf(i18n.ErrUnknown)
	}
	switch clientErr.Kind {
	case KindInvalidRequest:
		return p.Sprintf(i18n.ErrInvalidRequest)
	case KindNetwork:
		return p.Sprintf(i18n.ErrNetwork, cause(clientErr.Err))
	case KindInvalidResponse:
		return p.Sprintf(i18n.ErrInvalidResponse)
	case KindDecoding:
		return p.Sprintf(i18n.ErrDecoding, cause(clientErr.Err))
	default:
		return p.Sprintf(i18n.ErrUnknown)
	}
}

// cause strips one layer of "op: " context.
func cause(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
