package ecwid

import (
	"errors"
	"fmt"
)

// ErrIncompleteConfig is returned by NewClient when the store id or token is missing.
var ErrIncompleteConfig = errors.New("ecwid: incomplete configuration")

// GatewayError is any failure while talking to the commerce platform: transport errors,
// timeouts, non-2xx statuses and bodies that are not JSON or not the expected shape.
type GatewayError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no status applies
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	detail := e.Message
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}

	msg := fmt.Sprintf("ecwid: %s %s failed", e.Method, e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" %d", e.StatusCode)
	}
	if detail != "" {
		msg += ": " + detail
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
