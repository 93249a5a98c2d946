package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wordrecall/backend/internal/auth"
	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

// AnalyticsService is the interface that wraps study analytics business logic.
type AnalyticsService interface {
	// Method WordStats derives the per-word study statistics from the word's
	// quiz history, including the spaced-repetition box and next review date.
	WordStats(ctx context.Context, userID, wordID string) (*models.WordStats, error)
	// Method UserAnalytics summarises the user's recent quiz activity.
	UserAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error)
}

// AnalyticsHandler handles HTTP requests for study analytics
type AnalyticsHandler struct {
	BaseHandler
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all analytics handler routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/", h.Overview)
		r.Get("/words/{wordId}", h.WordStats)
	})
}

// Overview handles GET /api/v1/analytics
// @Summary Get study analytics
// @Description Get accuracy trends, hardest words and quiz type breakdown for the user
// @Tags analytics
// @Produce json
// @Success 200 {object} models.UserAnalytics
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/analytics [get]
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	analytics, err := h.service.UserAnalytics(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get user analytics", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get analytics")
		return
	}

	h.respondJSON(w, http.StatusOK, analytics)
}

// WordStats handles GET /api/v1/analytics/words/{wordId}
// @Summary Get word statistics
// @Description Get quiz accuracy, difficulty and next review date for one word
// @Tags analytics
// @Produce json
// @Param wordId path string true "Word ID"
// @Success 200 {object} models.WordStats
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/analytics/words/{wordId} [get]
func (h *AnalyticsHandler) WordStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.service.WordStats(r.Context(), userID, chi.URLParam(r, "wordId"))
	if err != nil {
		h.logger.Error("failed to get word stats", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get word statistics")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}
