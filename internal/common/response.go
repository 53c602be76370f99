package common

import (
	"encoding/json"
	"net/http"
)

const (
	problemContentType   = "application/problem+json"
	validationProblemURI = "https://tools.ietf.org/html/rfc9110#section-15.5.1"
	serverProblemURI     = "https://tools.ietf.org/html/rfc9110#section-15.6.1"
)

// ProblemBody is an RFC 7807 problem details payload.
type ProblemBody struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Problem renders a problem details response.
func Problem(w http.ResponseWriter, body ProblemBody) {
	if body.Status == 0 {
		body.Status = http.StatusInternalServerError
	}
	if body.Title == "" {
		body.Title = http.StatusText(body.Status)
	}
	if body.Type == "" {
		body.Type = "about:blank"
	}
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(body.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// BadRequest renders a 400 problem with a short detail.
func BadRequest(w http.ResponseWriter, detail string) {
	Problem(w, ProblemBody{
		Type:   validationProblemURI,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: detail,
	})
}

// ValidationProblem renders field-level validation failures as a 400 problem.
func ValidationProblem(w http.ResponseWriter, errs map[string][]string) {
	Problem(w, ProblemBody{
		Type:   validationProblemURI,
		Title:  "One or more validation errors occurred.",
		Status: http.StatusBadRequest,
		Errors: errs,
	})
}

// InternalError renders a 500 problem that carries no detail about the cause.
func InternalError(w http.ResponseWriter) {
	Problem(w, ProblemBody{
		Type:   serverProblemURI,
		Title:  "An error occurred while processing your request.",
		Status: http.StatusInternalServerError,
	})
}
