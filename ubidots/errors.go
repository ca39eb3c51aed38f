package ubidots

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthFailed indicates that the API key could not be exchanged for a token.
	ErrAuthFailed = errors.New("ubidots: authentication failed")

	// ErrUploadFailed indicates that a value or collection upload was rejected or
	// could not be delivered.
	ErrUploadFailed = errors.New("ubidots: upload failed")

	// ErrCollectionFull indicates that Add was called on a full Collection.
	ErrCollectionFull = errors.New("ubidots: collection is full")

	// ErrEmptyAPIKey indicates that NewClient was called without an API key.
	ErrEmptyAPIKey = errors.New("ubidots: api key is empty")

	// ErrEmptyVariableID indicates that an upload named no variable.
	ErrEmptyVariableID = errors.New("ubidots: variable id is empty")
)

// StatusError is a non-success HTTP response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
