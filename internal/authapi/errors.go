package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingToken is returned when a 2xx login or register response does
// not carry a token.
var ErrMissingToken = errors.New("auth api response carried no token")

// maxErrorBody caps how much of an error response is kept for logging.
const maxErrorBody = 4 << 10

// Error is a non-2xx response from the authentication service.
type Error struct {
	// Method and Path identify the failed call.
	Method string
	Path   string

	// StatusCode is the upstream HTTP status.
	StatusCode int

	// Message is the service's "message" (or "error") field, if any.
	Message string

	// Body is the raw (truncated) response body, for logging only.
	Body string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth api %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth api %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unauthorized reports whether the service rejected the credentials or token.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsValidation reports whether the service rejected the submitted fields.
func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity || e.StatusCode == http.StatusBadRequest
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// newError builds an *Error from a failed response body. The service
// answers with {"message": "..."} or {"error": "..."}; validation failures
// may also carry {"errors": {"field": ["..."]}}, whose first entry is used
// when no message is present.
func newError(method, path string, status int, body []byte) *Error {
	e := &Error{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var payload struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return e
	}

	switch {
	case payload.Message != "":
		e.Message = payload.Message
	case payload.Error != "":
		e.Message = payload.Error
	default:
		for _, msgs := range payload.Errors {
			if len(msgs) > 0 {
				e.Message = msgs[0]
				break
			}
		}
	}
	return e
}
