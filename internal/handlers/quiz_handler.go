package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wordrecall/backend/internal/auth"
	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/services"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps the quiz session lifecycle.
type QuizService interface {
	// Method StartSession builds a new quiz queue for the user by sampling
	// their vocabulary, weighted toward words with low recall probability.
	// An empty vocabulary yields a session in the "no_words" state rather
	// than an error.
	StartSession(ctx context.Context, userID string, mode models.QuizMode) (*models.SessionView, error)
	// Method GetSession returns the current snapshot of an existing session.
	GetSession(sessionID, userID string) (*models.SessionView, error)
	// Method Answer records the result for the current question and advances
	// the queue. Answering the last question finishes the session and the
	// returned result carries the streak outcome.
	Answer(ctx context.Context, sessionID, userID string, correct bool) (*models.AnswerResult, error)
	// Method FinishEarly ends an active session after at least one answer,
	// scoring only the answered portion.
	FinishEarly(ctx context.Context, sessionID, userID string) (*models.AnswerResult, error)
}

// QuizHandler handles HTTP requests for quiz sessions
type QuizHandler struct {
	BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Route("/quiz/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/answers", h.Answer)
		r.Post("/{id}/finish", h.Finish)
	})
}

type startSessionRequest struct {
	Mode models.QuizMode `json:"mode"`
}

type answerRequest struct {
	Correct bool `json:"correct"`
}

// StartSession handles POST /api/v1/quiz/sessions
// @Summary Start a quiz session
// @Description Start a new quiz session with a queue sampled from the user's vocabulary
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body startSessionRequest true "Quiz mode: flashcard, mcq or fill"
// @Success 201 {object} models.SessionView
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quiz/sessions [post]
func (h *QuizHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req startSessionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = models.QuizModeFlashcard
	}

	session, err := h.service.StartSession(r.Context(), userID, req.Mode)
	if err != nil {
		if errors.Is(err, services.ErrInvalidQuizMode) {
			h.respondError(w, http.StatusBadRequest, "invalid quiz mode")
			return
		}
		h.logger.Error("failed to start quiz session", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to start quiz session")
		return
	}

	h.respondJSON(w, http.StatusCreated, session)
}

// GetSession handles GET /api/v1/quiz/sessions/{id}
// @Summary Get a quiz session
// @Description Get the current snapshot of a quiz session
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionView
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quiz/sessions/{id} [get]
func (h *QuizHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.service.GetSession(chi.URLParam(r, "id"), userID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	h.respondJSON(w, http.StatusOK, session)
}

// Answer handles POST /api/v1/quiz/sessions/{id}/answers
// @Summary Answer the current question
// @Description Record the answer for the current question and advance the session
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body answerRequest true "Whether the answer was correct"
// @Success 200 {object} models.AnswerResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quiz/sessions/{id}/answers [post]
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req answerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Answer(r.Context(), chi.URLParam(r, "id"), userID, req.Correct)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			h.respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, services.ErrSessionNotActive):
			h.respondError(w, http.StatusConflict, "session is not active")
		case errors.Is(err, services.ErrAnswerInProgress):
			h.respondError(w, http.StatusConflict, "previous answer is still being processed")
		default:
			h.logger.Error("failed to record answer", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to record answer")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Finish handles POST /api/v1/quiz/sessions/{id}/finish
// @Summary Finish a quiz session early
// @Description End an active session before the queue is exhausted, scoring only the answered questions
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.AnswerResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quiz/sessions/{id}/finish [post]
func (h *QuizHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.service.FinishEarly(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			h.respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, services.ErrSessionNotActive):
			h.respondError(w, http.StatusConflict, "session is not active")
		case errors.Is(err, services.ErrNothingAnswered):
			h.respondError(w, http.StatusConflict, "no questions answered yet")
		default:
			h.logger.Error("failed to finish session", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to finish session")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
