package gmset

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// An Error reprensents an HTTP error returned by the collection server.
type Error struct {
	StatusCode int `json:"-"`
	Err        struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseError(r io.Reader, code int) error {
	var gmerr Error
	dec := json.NewDecoder(r)
	if err := dec.Decode(&gmerr); err != nil || gmerr.Err.Message == "" {
		gmerr.Err.Message = http.StatusText(code)
	}
	gmerr.StatusCode = code
	return &gmerr
}

func (e *Error) Error() string {
	return e.Err.Message
}

// IsNotFound returns true if err is a not found error returned by the server.
func IsNotFound(err error) bool {
	gmerr, ok := errors.Cause(err).(*Error)
	return ok && gmerr.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the server rejected the access key.
func IsUnauthorized(err error) bool {
	gmerr, ok := errors.Cause(err).(*Error)
	return ok && gmerr.StatusCode == http.StatusUnauthorized
}
