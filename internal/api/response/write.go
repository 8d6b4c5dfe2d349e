package response

import (
	"encoding/json"
	"net/http"

	"github.com/benmooo/ll-xq/internal/session"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Envelope writes a session envelope with its matching status
func Envelope(w http.ResponseWriter, env session.Envelope) {
	JSON(w, env.Status(), env)
}
