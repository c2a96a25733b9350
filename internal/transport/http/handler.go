package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fitquiz-service/internal/app"
	"fitquiz-service/internal/domain"
)

// Handler exposes the quiz resolution service over a JSON API.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register wires the routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/users/{userID}/active-quiz", h.getActiveQuiz)
	mux.HandleFunc("POST /api/users/{userID}/quizzes/{quizID}/answers", h.submitAnswers)
	mux.HandleFunc("POST /api/users/{userID}/assignments", h.assignQuiz)
}

func (h *Handler) getActiveQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	quiz, ok, err := h.service.GetActiveQuiz(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		// No active quiz is a normal terminal state, not an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type submitRequest struct {
	Answers []domain.Answer `json:"answers"`
}

func (h *Handler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	quizID := r.PathValue("quizID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return
	}

	result, err := h.service.SubmitAnswers(r.Context(), userID, quizID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type assignRequest struct {
	QuizID     string `json:"quizId"`
	AssignedBy string `json:"assignedBy"`
}

func (h *Handler) assignQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "quizId is required"})
		return
	}
	assignedBy := req.AssignedBy
	if assignedBy == "" {
		assignedBy = "admin"
	}

	if err := h.service.AssignQuiz(r.Context(), userID, req.QuizID, assignedBy); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrNothingToSubmit):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
