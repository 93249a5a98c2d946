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

// LeaderboardService is the interface that wraps XP ranking business logic.
type LeaderboardService interface {
	// Method Leaderboard returns the ranked top users for the timeframe plus
	// the requesting user's own ranked entry when they did not make the list.
	Leaderboard(ctx context.Context, userID string, timeframe models.Timeframe) (*models.Leaderboard, error)
}

// LeaderboardHandler handles HTTP requests for the XP leaderboard
type LeaderboardHandler struct {
	BaseHandler
	service LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(svc LeaderboardService, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all leaderboard handler routes
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.Get)
}

// Get handles GET /api/v1/leaderboard
// @Summary Get the leaderboard
// @Description Get the top users by XP for the weekly or all-time timeframe
// @Tags leaderboard
// @Produce json
// @Param timeframe query string false "Timeframe: weekly or alltime, default: weekly"
// @Success 200 {object} models.Leaderboard
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	timeframe := models.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = models.TimeframeWeekly
	}

	board, err := h.service.Leaderboard(r.Context(), userID, timeframe)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTimeframe) {
			h.respondError(w, http.StatusBadRequest, "invalid timeframe")
			return
		}
		h.logger.Error("failed to get leaderboard", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}

	h.respondJSON(w, http.StatusOK, board)
}
