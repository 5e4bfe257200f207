package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures where no usable response arrived.
	ErrTransport = errors.New("transport failure")
	// ErrDecode marks responses whose body is not the expected JSON.
	ErrDecode = errors.New("decode failure")
)

// APIError is a non-2xx response from the backend. Message holds the
// body's "error" field and is empty when the body carried none. A body
// that is not JSON at all is reported as ErrDecode wrapping the APIError.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type errorBody struct {
	Error string `json:"error"`
}
