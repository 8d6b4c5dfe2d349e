package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/benmooo/ll-xq/internal/api/handler"
	"github.com/benmooo/ll-xq/internal/api/middleware"
	"github.com/benmooo/ll-xq/internal/api/response"
	"github.com/benmooo/ll-xq/internal/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Session *session.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Session, cfg.Logger)
	resultsHandler := handler.NewResultsHandler(cfg.Session)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Room routes
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	rooms := api.PathPrefix("/rooms/{room_id}").Subrouter()
	rooms.HandleFunc("/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/move", roomHandler.Move).Methods(http.MethodPost)
	rooms.HandleFunc("/ping", roomHandler.Ping).Methods(http.MethodPost)
	rooms.HandleFunc("/state", roomHandler.State).Methods(http.MethodGet)
	rooms.HandleFunc("/legal-moves", roomHandler.LegalMoves).Methods(http.MethodGet)
	rooms.HandleFunc("/events", roomHandler.Events).Methods(http.MethodGet)
	rooms.HandleFunc("/ws", roomHandler.WebSocket).Methods(http.MethodGet)

	// Finished games
	api.HandleFunc("/results", resultsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/results/{room_id}", resultsHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
