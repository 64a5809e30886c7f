package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quizpro/internal/app"
	"quizpro/internal/domain"
)

// APIHandler serves the quiz API backed by the in-process grader, so remote
// players can generate and submit against this service.
type APIHandler struct {
	grader *app.Grader
}

func NewAPIHandler(grader *app.Grader) *APIHandler {
	return &APIHandler{grader: grader}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("GET /api/quiz/categories", h.categories)
	mux.HandleFunc("POST /api/quiz/generate", h.generate)
	mux.HandleFunc("POST /api/quiz/submit", h.submit)
}

func (h *APIHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "quizpro"})
}

func (h *APIHandler) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": h.grader.Categories()})
}

func (h *APIHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	quiz, err := h.grader.Generate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *APIHandler) submit(w http.ResponseWriter, r *http.Request) {
	var submission domain.Submission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	result, err := h.grader.Submit(r.Context(), submission)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LobbyHandler serves the best-effort lobby view.
type LobbyHandler struct {
	source app.LobbySource
}

func NewLobbyHandler(source app.LobbySource) *LobbyHandler {
	return &LobbyHandler{source: source}
}

func (h *LobbyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	leaders := intQuery(r, "leaderboard", 10)
	history := intQuery(r, "history", 20)
	writeJSON(w, http.StatusOK, app.LoadLobby(r.Context(), h.source, leaders, history))
}

func intQuery(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, domain.ErrQuizCompleted):
		writeError(w, http.StatusBadRequest, "Quiz already completed")
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidSubmission):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("quiz api: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
