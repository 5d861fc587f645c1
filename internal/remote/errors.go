package remote

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransportError means the request could not be sent or its response could
// not be read or parsed.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Cause.Error()
	}
	return e.Op
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RemoteError is a response whose status indicates failure. Message is taken
// from the structured error payload when there is one.
//
//	var remoteErr *RemoteError
//	if errors.As(err, &remoteErr) {
//	    if remoteErr.StatusCode == http.StatusNotFound { ... }
//	}
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func NewTransportError(op string, cause error) *TransportError {
	return &TransportError{Op: op, Cause: cause}
}

func NewRemoteError(statusCode int, message string) *RemoteError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &RemoteError{StatusCode: statusCode, Message: message}
}

// IsRemoteStatus checks whether err is a *RemoteError with the given status.
func IsRemoteStatus(err error, status int) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode == status
	}
	return false
}

func (e *TransportError) UserMessage() string {
	var netErr net.Error
	if errors.As(e.Cause, &netErr) && netErr.Timeout() {
		return "Request timed out. Please try again."
	}
	switch e.Op {
	case opDecode:
		return "The server sent a response that could not be read."
	default:
		return "Could not reach the server. Please check your connection."
	}
}

func (e *RemoteError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}
