package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/quizroom/quizroom/game/bank"
	"github.com/quizroom/quizroom/game/quiz"
	"github.com/quizroom/quizroom/game/service"
	"github.com/quizroom/quizroom/game/session"
	"github.com/quizroom/quizroom/transport/websocket"
)

// Server represents the HTTP server: REST game management plus the
// WebSocket upgrade endpoint.
type Server struct {
	service  service.QuizService
	protocol *websocket.ProtocolHandler
	router   *mux.Router
}

// NewServer creates a new API server.
func NewServer(quizService service.QuizService, protocol *websocket.ProtocolHandler) *Server {
	s := &Server{
		service:  quizService,
		protocol: protocol,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Game management
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleDeleteGame).Methods("DELETE")
	api.HandleFunc("/games/{id}/start", s.handleStartGame).Methods("POST")

	// WebSocket
	if s.protocol != nil {
		s.router.Handle("/ws", s.protocol)
	}

	// Health check
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errStatus maps service errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrGameNotFound), errors.Is(err, bank.ErrSetNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrRegistryFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Game Handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data string `json:"data,omitempty"` // raw question text
		Bank string `json:"bank,omitempty"` // named question set
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var info *service.GameInfo
	var err error
	switch {
	case req.Bank != "":
		info, err = s.service.CreateGameFromBank(r.Context(), req.Bank)
	case req.Data != "":
		info, err = s.service.CreateGame(r.Context(), req.Data)
	default:
		respondError(w, http.StatusBadRequest, "Either data or bank is required")
		return
	}
	if err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Newest first for a stable listing
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathGameID(w, r)
	if !ok {
		return
	}

	info, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathGameID(w, r)
	if !ok {
		return
	}

	if err := s.service.StartGame(r.Context(), gameID); err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathGameID(w, r)
	if !ok {
		return
	}

	if err := s.service.EndGame(r.Context(), gameID); err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Game " + strconv.Itoa(gameID) + " ended",
	})
}

// pathGameID parses the {id} path variable, writing the error response
// itself when the value is not numeric.
func pathGameID(w http.ResponseWriter, r *http.Request) (int, bool) {
	gameID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Game id must be a number")
		return 0, false
	}
	return gameID, true
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
