package client

import (
	"errors"
	"fmt"
)

var ErrResponseTooLarge = errors.New("response body too large")

// RemoteError is a failure reported by the backend itself: a non-2xx status or a
// success=false envelope. Transport failures are returned as plain wrapped errors.
type RemoteError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// envelope is the common response shape of the backend.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func checkEnvelope(operation string, resp *Response, env *envelope) error {
	if !resp.IsSuccess() {
		msg := env.Message
		if msg == "" {
			msg = GetErrorMessage(resp)
		}
		return &RemoteError{Operation: operation, StatusCode: resp.StatusCode, Message: msg}
	}
	if !env.Success {
		return &RemoteError{Operation: operation, StatusCode: resp.StatusCode, Message: env.Message}
	}
	return nil
}
