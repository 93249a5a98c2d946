package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

// InteractionLogRepository appends client-reported interaction events.
type InteractionLogRepository interface {
	InsertBatch(ctx context.Context, logs []models.InteractionLog) error
}

var (
	// ErrEmptyBatch is returned for an interaction upload with no events.
	ErrEmptyBatch = errors.New("interaction batch is empty")
	// ErrBatchTooLarge is returned when a batch exceeds the size limit.
	ErrBatchTooLarge = errors.New("interaction batch exceeds 100 events")
	// ErrInvalidInteraction is returned when an event has an unknown type or
	// a missing word id.
	ErrInvalidInteraction = errors.New("invalid interaction event")
)

const maxBatchSize = 100

type interactionService struct {
	logs   InteractionLogRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(logs InteractionLogRepository, logger *zap.Logger) *interactionService {
	return &interactionService{
		logs:   logs,
		logger: logger,
		now:    time.Now,
	}
}

// RecordBatch validates and appends a batch of client-side interaction
// events. Quiz answer types are rejected here: those are only ever written
// by the quiz session pipeline so attempt counters cannot be forged.
func (s *interactionService) RecordBatch(ctx context.Context, userID string, events []models.InteractionEvent) (int, error) {
	if len(events) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(events) > maxBatchSize {
		return 0, ErrBatchTooLarge
	}

	now := s.now()
	logs := make([]models.InteractionLog, 0, len(events))
	for i, event := range events {
		if event.WordID == "" || !event.Type.IsValid() || event.Type.IsQuiz() {
			return 0, fmt.Errorf("%w: event %d", ErrInvalidInteraction, i)
		}
		logs = append(logs, models.InteractionLog{
			ID:        uuid.New().String(),
			UserID:    userID,
			WordID:    event.WordID,
			Type:      event.Type,
			Timestamp: now,
			Extra:     event.Extra,
		})
	}

	if err := s.logs.InsertBatch(ctx, logs); err != nil {
		return 0, fmt.Errorf("failed to record interactions: %w", err)
	}

	s.logger.Debug("recorded interaction batch",
		zap.String("user_id", userID),
		zap.Int("count", len(logs)))

	return len(logs), nil
}
