package modeladapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrInvalidModel   = errors.New("invalid model")
	ErrTransport      = errors.New("transport failure")
	ErrEmptyResponse  = errors.New("empty response")
)

// AuthenticationError reports a missing or rejected credential.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return ErrAuthentication.Error()
	}
	return ErrAuthentication.Error() + ": " + e.Message
}

func (e *AuthenticationError) Unwrap() error        { return e.Err }
func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// InvalidModelError reports that the service does not know the model identifier.
type InvalidModelError struct {
	Model   string
	Message string
	Err     error
}

func (e *InvalidModelError) Error() string {
	msg := fmt.Sprintf("%s %q", ErrInvalidModel, e.Model)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *InvalidModelError) Unwrap() error        { return e.Err }
func (e *InvalidModelError) Is(target error) bool { return target == ErrInvalidModel }

// TransportError wraps a network or timeout failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// EmptyResponseError reports a reply with no usable text.
type EmptyResponseError struct {
	FinishReason string
}

func (e *EmptyResponseError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("%s (finish reason %s)", ErrEmptyResponse, e.FinishReason)
	}
	return ErrEmptyResponse.Error()
}

func (e *EmptyResponseError) Is(target error) bool { return target == ErrEmptyResponse }

// StatusError is a non-2xx API response that fits none of the other kinds.
type StatusError struct {
	Code    int    // HTTP status code.
	Status  string // API status such as "INVALID_ARGUMENT", when present.
	Message string // API error message, or the raw body.
}

// NewStatusError builds a StatusError from a response body, decoding the
// Google API error envelope {"error":{"code","message","status"}} when present.
func NewStatusError(code int, body []byte) *StatusError {
	e := &StatusError{Code: code, Message: strings.TrimSpace(string(body))}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		e.Message = envelope.Error.Message
		e.Status = envelope.Error.Status
	}

	return e
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected status %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// ClassifyStatus maps an API status error onto the error taxonomy. Errors
// that match no kind are returned unchanged.
func ClassifyStatus(se *StatusError, model string) error {
	return ClassifyAPIError(se.Code, se.Status, se.Message, model, se)
}

// ClassifyAPIError maps an API failure described by its HTTP code, API status
// and message onto the error taxonomy. The returned error unwraps to cause;
// cause itself is returned when no kind matches.
func ClassifyAPIError(code int, status, message, model string, cause error) error {
	msg := strings.ToLower(message)

	switch {
	case code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		status == "UNAUTHENTICATED",
		status == "PERMISSION_DENIED",
		strings.Contains(msg, "api key not valid"),
		strings.Contains(msg, "api_key_invalid"):
		return &AuthenticationError{Message: message, Err: cause}
	case code == http.StatusNotFound,
		status == "NOT_FOUND",
		code == http.StatusBadRequest && strings.Contains(msg, "model"):
		return &InvalidModelError{Model: model, Message: message, Err: cause}
	}

	return cause
}

// Classify maps an arbitrary backend error onto the error taxonomy. Errors
// already classified, and errors that match no kind, are returned unchanged.
func Classify(err error, model string) error {
	if err == nil {
		return nil
	}

	var (
		authErr  *AuthenticationError
		modelErr *InvalidModelError
		trErr    *TransportError
		emptyErr *EmptyResponseError
	)
	if errors.As(err, &authErr) || errors.As(err, &modelErr) ||
		errors.As(err, &trErr) || errors.As(err, &emptyErr) {
		return err
	}

	var se *StatusError
	if errors.As(err, &se) {
		return ClassifyStatus(se, model)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return &TransportError{Err: err}
	}

	return err
}
