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

// WordService is the interface that wraps vocabulary management business logic.
type WordService interface {
	// Method ListWords returns all of the user's words in creation order.
	ListWords(ctx context.Context, userID string) ([]models.Word, error)
	// Method GetWord returns a single word by id, scoped to its owner.
	GetWord(ctx context.Context, id, userID string) (*models.Word, error)
	// Method SearchWords returns the user's words whose term starts with the
	// given prefix, ordered alphabetically.
	SearchWords(ctx context.Context, userID, prefix string) ([]models.Word, error)
	// Method CreateWord adds a new word to the user's vocabulary.
	CreateWord(ctx context.Context, userID string, req *models.CreateWordRequest) (*models.Word, error)
	// Method UpdateWord applies the non-nil fields of the request to an
	// existing word.
	UpdateWord(ctx context.Context, id, userID string, req *models.UpdateWordRequest) (*models.Word, error)
	// Method DeleteWord removes a word from the user's vocabulary.
	DeleteWord(ctx context.Context, id, userID string) error
	// Method EraseUser removes every record the user owns.
	EraseUser(ctx context.Context, userID string) error
}

// WordsHandler handles HTTP requests for vocabulary management
type WordsHandler struct {
	BaseHandler
	service WordService
}

// NewWordsHandler creates a new words handler
func NewWordsHandler(svc WordService, logger *zap.Logger) *WordsHandler {
	return &WordsHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all word handler routes
func (h *WordsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/words", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	r.Delete("/account", h.EraseAccount)
}

// List handles GET /api/v1/words
// @Summary List words
// @Description Get all of the user's vocabulary words
// @Tags words
// @Produce json
// @Success 200 {array} models.Word
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/words [get]
func (h *WordsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	words, err := h.service.ListWords(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list words", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to list words")
		return
	}

	h.respondJSON(w, http.StatusOK, words)
}

// Search handles GET /api/v1/words/search
// @Summary Search words
// @Description Search the user's words by term prefix
// @Tags words
// @Produce json
// @Param q query string true "Term prefix"
// @Success 200 {array} models.Word
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/words/search [get]
func (h *WordsHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	words, err := h.service.SearchWords(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("failed to search words", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to search words")
		return
	}

	h.respondJSON(w, http.StatusOK, words)
}

// Get handles GET /api/v1/words/{id}
// @Summary Get a word
// @Description Get a single word by id
// @Tags words
// @Produce json
// @Param id path string true "Word ID"
// @Success 200 {object} models.Word
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/words/{id} [get]
func (h *WordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	word, err := h.service.GetWord(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrWordNotFound) {
			h.respondError(w, http.StatusNotFound, "word not found")
			return
		}
		h.logger.Error("failed to get word", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get word")
		return
	}

	h.respondJSON(w, http.StatusOK, word)
}

// Create handles POST /api/v1/words
// @Summary Create a word
// @Description Add a new word to the user's vocabulary
// @Tags words
// @Accept json
// @Produce json
// @Param request body models.CreateWordRequest true "Word data"
// @Success 201 {object} models.Word
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/words [post]
func (h *WordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateWordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	word, err := h.service.CreateWord(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTerm) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create word", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to create word")
		return
	}

	h.respondJSON(w, http.StatusCreated, word)
}

// Update handles PATCH /api/v1/words/{id}
// @Summary Update a word
// @Description Update the provided fields of an existing word
// @Tags words
// @Accept json
// @Produce json
// @Param id path string true "Word ID"
// @Param request body models.UpdateWordRequest true "Fields to update"
// @Success 200 {object} models.Word
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/words/{id} [patch]
func (h *WordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.UpdateWordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	word, err := h.service.UpdateWord(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWordNotFound):
			h.respondError(w, http.StatusNotFound, "word not found")
		case errors.Is(err, services.ErrInvalidTerm):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update word", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to update word")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, word)
}

// Delete handles DELETE /api/v1/words/{id}
// @Summary Delete a word
// @Description Remove a word from the user's vocabulary
// @Tags words
// @Produce json
// @Param id path string true "Word ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/words/{id} [delete]
func (h *WordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.DeleteWord(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		if errors.Is(err, services.ErrWordNotFound) {
			h.respondError(w, http.StatusNotFound, "word not found")
			return
		}
		h.logger.Error("failed to delete word", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to delete word")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EraseAccount handles DELETE /api/v1/account
// @Summary Erase account data
// @Description Permanently delete all of the user's words, history, progress and XP
// @Tags account
// @Produce json
// @Success 204
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/account [delete]
func (h *WordsHandler) EraseAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.EraseUser(r.Context(), userID); err != nil {
		h.logger.Error("failed to erase account", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to erase account data")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
