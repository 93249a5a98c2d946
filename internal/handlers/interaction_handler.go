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

// InteractionService is the interface that wraps interaction event recording.
type InteractionService interface {
	// Method RecordBatch validates and appends a batch of client-side
	// interaction events, returning the number of accepted events.
	RecordBatch(ctx context.Context, userID string, events []models.InteractionEvent) (int, error)
}

// InteractionsHandler handles HTTP requests for interaction event uploads
type InteractionsHandler struct {
	BaseHandler
	service InteractionService
}

// NewInteractionsHandler creates a new interactions handler
func NewInteractionsHandler(svc InteractionService, logger *zap.Logger) *InteractionsHandler {
	return &InteractionsHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all interaction handler routes
func (h *InteractionsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/interactions", h.RecordBatch)
}

type interactionBatchRequest struct {
	Events []models.InteractionEvent `json:"events"`
}

type interactionBatchResponse struct {
	Accepted int `json:"accepted"`
}

// RecordBatch handles POST /api/v1/interactions
// @Summary Upload interaction events
// @Description Record a batch of client-side study interaction events
// @Tags interactions
// @Accept json
// @Produce json
// @Param request body interactionBatchRequest true "Events to record"
// @Success 202 {object} interactionBatchResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/interactions [post]
func (h *InteractionsHandler) RecordBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req interactionBatchRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	accepted, err := h.service.RecordBatch(r.Context(), userID, req.Events)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyBatch),
			errors.Is(err, services.ErrBatchTooLarge),
			errors.Is(err, services.ErrInvalidInteraction):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to record interactions", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to record interactions")
		}
		return
	}

	h.respondJSON(w, http.StatusAccepted, interactionBatchResponse{Accepted: accepted})
}
