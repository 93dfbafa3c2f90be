package skrape

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/swag"
)

// Error codes carried by [Error.Code].
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeTimeout          = "TIMEOUT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL"
	CodeUnavailable      = "UNAVAILABLE"
	CodeAPIError         = "API_ERROR"
	CodeConnectionFailed = "CONNECTION_FAILED"
	CodeCanceled         = "CANCELED"
	CodeInvalidResponse  = "INVALID_RESPONSE"
	CodeSchemaConversion = "SCHEMA_CONVERSION"
	CodeValidation       = "VALIDATION"
	CodeInvalidConfig    = "INVALID_CONFIG"
)

// Error represents a Skrape API error.
//
// Status is the HTTP status code of the response, or 0 when no response
// was received. RetryAfter holds the parsed Retry-After header in seconds
// and is nil when the server did not send one.
type Error struct {
	Code       string
	Message    string
	Status     int
	RetryAfter *int
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("skrape: %s: %s", e.Code, e.Message)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, skrape.ErrRateLimited) works for any rate limit response.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// RetryAfterDuration returns the Retry-After hint as a duration.
func (e *Error) RetryAfterDuration() (time.Duration, bool) {
	if e.RetryAfter == nil {
		return 0, false
	}
	return time.Duration(swag.IntValue(e.RetryAfter)) * time.Second, true
}

// Temporary reports whether repeating the same request may succeed.
func (e *Error) Temporary() bool {
	switch e.Code {
	case CodeConnectionFailed, CodeTimeout:
		return true
	}
	switch e.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Sentinel errors.
var (
	ErrBadRequest   = &Error{Code: CodeBadRequest, Message: "invalid request", Status: 400}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "invalid or missing API key", Status: 401}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "resource not found", Status: 404}
	ErrTimeout      = &Error{Code: CodeTimeout, Message: "request timed out", Status: 408}
	ErrRateLimited  = &Error{Code: CodeRateLimited, Message: "rate limit exceeded", Status: 429}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal server error", Status: 500}
	ErrUnavailable  = &Error{Code: CodeUnavailable, Message: "server too busy, please retry", Status: 503}
)

func newError(code, message string, status int, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Cause:   cause,
	}
}

// codeForStatus maps an HTTP status code onto an error code.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeTimeout
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeAPIError
}

// newStatusError builds the error for a non-2xx response.
//
// The message comes from the "error" field of a JSON body when present.
func newStatusError(status int, retryAfter string, body []byte) *Error {
	var payload struct {
		Error string `json:"error"`
	}
	message := ""
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		message = payload.Error
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}

	e := newError(codeForStatus(status), message, status, nil)
	e.RetryAfter = parseRetryAfter(retryAfter, time.Now())
	return e
}

// parseRetryAfter accepts both forms of the Retry-After header: delay in
// seconds, or an HTTP-date. Anything else yields nil.
func parseRetryAfter(v string, now time.Time) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return nil
		}
		return swag.Int(secs)
	}
	if at, err := http.ParseTime(v); err == nil {
		secs := int(at.Sub(now).Round(time.Second) / time.Second)
		if secs < 0 {
			secs = 0
		}
		return swag.Int(secs)
	}
	return nil
}
