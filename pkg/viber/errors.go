package viber

import (
	"errors"
	"fmt"
)

// Argument validation errors. These are returned before any network I/O
// happens, so a caller seeing one knows the platform was never contacted.
var (
	ErrMissingReceiver          = errors.New("missing receiver and chat id")
	ErrMissingMessageData       = errors.New("missing message data")
	ErrNothingToSend            = errors.New("nothing to send")
	ErrMissingReceivers         = errors.New("missing receivers")
	ErrTooManyReceivers         = errors.New("too many receivers")
	ErrMissingUserID            = errors.New("missing user id")
	ErrEmptyIDs                 = errors.New("empty ids")
	ErrTooManyIDs               = errors.New("too many ids")
	ErrMissingSenderProfile     = errors.New("missing sender profile")
	ErrMissingMessageDataOrType = errors.New("missing message data or type")
)

// ErrUnknownEndpoint guards against internal misuse of the dispatch routine;
// all public operations pass valid endpoint names.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// StatusError is returned when the platform answers with a non-zero status.
// Response carries the complete decoded body for the caller to inspect.
type StatusError struct {
	Endpoint string
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("viber API error on %s: %s (status: %d)", e.Endpoint, e.Response.StatusMessage, e.Response.Status)
}
