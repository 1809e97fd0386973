package http

import (
	"encoding/json"
	"net/http"
)

// apiError is the JSON error envelope. Login failures stay opaque: the
// detail is for operators (logs), never for the end user.
type apiError struct {
	Code   int    `json:"-"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

var (
	errBadRequest       = apiError{Code: http.StatusBadRequest, Error: "bad_request"}
	errNotFound         = apiError{Code: http.StatusNotFound, Error: "not_found"}
	errAuthFailed       = apiError{Code: http.StatusUnauthorized, Error: "authentication_failed"}
	errMethodNotAllowed = apiError{Code: http.StatusMethodNotAllowed, Error: "method_not_allowed"}
	errInternal         = apiError{Code: http.StatusInternalServerError, Error: "internal_error"}
)

// withDetail returns a copy of the error with a public detail string.
func (e apiError) withDetail(detail string) apiError {
	e.Detail = detail
	return e
}

// writeError writes the error envelope as JSON.
func writeError(w http.ResponseWriter, e apiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code)
	_ = json.NewEncoder(w).Encode(e)
}

// writeJSON writes a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
