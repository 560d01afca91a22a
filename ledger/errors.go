package ledger

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrorCode is the numeric error code returned in a node API error payload.
type ErrorCode int

// Reference: the node's JSON API error responses ({"errorCode": n, "errorDescription": "..."}).
const (
	ErrorCodeIncorrectRequest ErrorCode = 1
	ErrorCodeMissingParameter ErrorCode = 3
	ErrorCodeIncorrectParam   ErrorCode = 4
	ErrorCodeUnknownAccount   ErrorCode = 5
	ErrorCodeNotEnoughFunds   ErrorCode = 6
	ErrorCodeFeatureDisabled  ErrorCode = 9
)

// Error is an error reported by the node in a well-formed API response.
type Error struct {
	Code        ErrorCode
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("node error %d: %s", e.Code, e.Description)
}

// HTTPError is returned when the node responds with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("node responded with %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// IsUnknownAccount returns whether err (or its cause) is the node's
// "unknown account" condition.
func IsUnknownAccount(err error) bool {
	return HasErrorCode(err, ErrorCodeUnknownAccount)
}

// HasErrorCode returns whether err (or any error it wraps) is a node Error with
// the provided code.
func HasErrorCode(err error, code ErrorCode) bool {
	var nodeErr *Error
	if !errors.As(err, &nodeErr) {
		return false
	}

	return nodeErr.Code == code
}
