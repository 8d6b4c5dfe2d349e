package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/benmooo/ll-xq/internal/api/response"
	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/session"
)

// defaultResultsLimit applies when the limit query parameter is absent
const defaultResultsLimit = 20

// ResultsHandler handles finished-game endpoints
type ResultsHandler struct {
	session *session.Handler
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(s *session.Handler) *ResultsHandler {
	return &ResultsHandler{session: s}
}

// List handles GET /api/v1/results
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	response.Envelope(w, h.session.ListResults(r.Context(), limit))
}

// Get handles GET /api/v1/results/{room_id}
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.Envelope(w, h.session.GetResult(r.Context(), model.RoomID(mux.Vars(r)["room_id"])))
}
