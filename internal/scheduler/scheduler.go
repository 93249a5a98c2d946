// Package scheduler runs periodic maintenance jobs for the recall cache.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

// warmUpBatchSize matches the per-call prediction budget of the recall
// service; the nightly job drains the backlog a slice at a time.
const warmUpBatchSize = 15

// MissingRecallLister finds words that have never been predicted.
type MissingRecallLister interface {
	ListMissingRecall(ctx context.Context, limit int) ([]models.Word, error)
}

// RecallRefresher schedules predictions for the given words.
type RecallRefresher interface {
	RefreshBatch(words []models.Word)
	WarmUp()
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	words     MissingRecallLister
	recall    RecallRefresher
	logger    *zap.Logger
}

// New creates a new scheduler instance
func New(words MissingRecallLister, recall RecallRefresher, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		words:     words,
		recall:    recall,
		logger:    logger,
	}
}

// Start begins running all scheduled tasks. The prediction model is warmed up
// immediately and the recall cache is backfilled nightly while traffic is low.
func (s *Scheduler) Start() {
	s.recall.WarmUp()

	s.scheduler.Every(1).Day().At("03:00").Do(s.backfillRecall)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// backfillRecall requests predictions for words that never got one, for
// example because the prediction service was down when they were first
// quizzed.
func (s *Scheduler) backfillRecall() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	words, err := s.words.ListMissingRecall(ctx, warmUpBatchSize)
	if err != nil {
		s.logger.Error("failed to list words missing recall", zap.Error(err))
		return
	}
	if len(words) == 0 {
		return
	}

	s.logger.Info("backfilling recall predictions", zap.Int("count", len(words)))
	s.recall.RefreshBatch(words)
}
