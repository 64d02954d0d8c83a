package respond

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hongminglow/lab-portal/internal/apperr"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   apperr.Kind `json:"error,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response of the given kind; the status comes from the kind.
func Error(w http.ResponseWriter, kind apperr.Kind, message string) {
	status := kind.Status()
	write(w, status, Envelope{Code: status, Message: message, Error: kind})
}

// Fail renders err. Errors that are not *apperr.Error are logged and reported as Internal
// so that driver messages never reach the client.
func Fail(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.Internal {
		log.Printf("respond: internal error: %v", err)
		Error(w, apperr.Internal, "internal server error")
		return
	}
	Error(w, appErr.Kind, appErr.Message)
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
