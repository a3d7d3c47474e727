package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// ServiceError is the structured form of every remote failure. Message is
// the service's own text, passed through verbatim so it can be shown to the
// user as-is.
type ServiceError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// newStatusError maps a non-2xx status to a ServiceError. An empty message
// falls back to the standard status text.
func newStatusError(status int, message string) *ServiceError {
	if message == "" {
		message = http.StatusText(status)
	}
	e := &ServiceError{Status: status, Message: message}
	if status == http.StatusUnauthorized {
		e.Err = ErrUnauthorized
	}
	return e
}

func newTransportError(err error) *ServiceError {
	return &ServiceError{Message: err.Error(), Err: errors.Join(ErrUnavailable, err)}
}

// Message extracts the user-facing text of err: the service message for a
// ServiceError, err.Error() otherwise.
func Message(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
