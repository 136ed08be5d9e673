// Package jsonhttp writes JSON HTTP responses with the service's error shape.
package jsonhttp

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Respond writes response as JSON with the given status. A string response is
// wrapped into an ErrorResponse for error statuses, and a nil one falls back to
// the status text.
func Respond(w http.ResponseWriter, statusCode int, response any) {
	if statusCode >= http.StatusBadRequest {
		switch v := response.(type) {
		case nil:
			response = ErrorResponse{Error: http.StatusText(statusCode)}
		case string:
			response = ErrorResponse{Error: v}
		case error:
			response = ErrorResponse{Error: v.Error()}
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func OK(w http.ResponseWriter, response any) {
	Respond(w, http.StatusOK, response)
}

func BadRequest(w http.ResponseWriter, response any) {
	Respond(w, http.StatusBadRequest, response)
}

func NotFound(w http.ResponseWriter, response any) {
	Respond(w, http.StatusNotFound, response)
}

func MethodNotAllowed(w http.ResponseWriter, response any) {
	Respond(w, http.StatusMethodNotAllowed, response)
}

func RequestEntityTooLarge(w http.ResponseWriter, response any) {
	Respond(w, http.StatusRequestEntityTooLarge, response)
}

func InternalServerError(w http.ResponseWriter, response any) {
	Respond(w, http.StatusInternalServerError, response)
}

func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	NotFound(w, nil)
}

func MethodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	MethodNotAllowed(w, nil)
}

// NewMaxBodyBytesHandler is an http middleware constructor that limits the
// maximal number of bytes that can be read from the request body. Requests that
// announce a larger Content-Length are rejected before the handler runs; the rest
// are cut off by http.MaxBytesReader and detected with IsBodyTooLarge.
func NewMaxBodyBytesHandler(limit int64, response any) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				RequestEntityTooLarge(w, response)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			h.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err comes from a body cut off by http.MaxBytesReader.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
