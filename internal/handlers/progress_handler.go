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

// ProgressService is the interface that wraps streak and daily-goal business logic.
type ProgressService interface {
	// Method GetProgress returns the user's progress record, creating the
	// default one on first access.
	GetProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	// Method UpdateDailyGoal changes the user's daily word goal.
	UpdateDailyGoal(ctx context.Context, userID string, goal int) (*models.UserProgress, error)
}

// ProgressHandler handles HTTP requests for study progress
type ProgressHandler struct {
	BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Route("/progress", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/daily-goal", h.UpdateDailyGoal)
	})
}

type dailyGoalRequest struct {
	DailyGoal int `json:"dailyGoal"`
}

// Get handles GET /api/v1/progress
// @Summary Get study progress
// @Description Get the user's streaks, daily goal and lifetime counters
// @Tags progress
// @Produce json
// @Success 200 {object} models.UserProgress
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/progress [get]
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	progress, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get progress", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get progress")
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

// UpdateDailyGoal handles PUT /api/v1/progress/daily-goal
// @Summary Update daily goal
// @Description Set the number of words the user aims to study per day
// @Tags progress
// @Accept json
// @Produce json
// @Param request body dailyGoalRequest true "New daily goal"
// @Success 200 {object} models.UserProgress
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/progress/daily-goal [put]
func (h *ProgressHandler) UpdateDailyGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req dailyGoalRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	progress, err := h.service.UpdateDailyGoal(r.Context(), userID, req.DailyGoal)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDailyGoal) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to update daily goal", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to update daily goal")
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}
