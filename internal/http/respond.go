package http

import (
	"net/http"

	"github.com/leg100/todo/internal/json"
)

// ErrorResponse is the body of every error response from the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of a response that carries no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes v as a JSON encoded response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON encoded error response.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorResponse{Error: msg})
}
