package services

import (
	"errors"
	"net/http"
)

// Error is the request-visible failure value. Handlers turn it into the
// micropub JSON error body; Status is the HTTP status to respond with.
// Descriptions are for clients and must not contain file system paths.
type Error struct {
	Status      int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Description
}

// AsError unwraps err into an *Error, mapping anything unrecognized to a
// generic bad request.
func AsError(err error) *Error {
	var mpErr *Error
	if errors.As(err, &mpErr) {
		return mpErr
	}
	return &Error{Status: http.StatusBadRequest, Code: "invalid_request", Description: "The request could not be processed."}
}

// NewError builds an Error for callers outside this package, such as the
// request-decoding and auth layers.
func NewError(status int, code, description string) *Error {
	return &Error{Status: status, Code: code, Description: description}
}

func badRequest(code, description string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Description: description}
}

func notFound() *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Description: "No source file matches that URL."}
}

func fileConflict() *Error {
	return badRequest("file_conflict", "The specified file exists.")
}
