package services

import (
	"context"
	"fmt"
	"time"

	"github.com/wordrecall/backend/internal/background"
	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/predictor"
	"go.uber.org/zap"
)

// RecallWordsRepository is the interface that wraps the word storage methods
// the recall service needs.
type RecallWordsRepository interface {
	// Method UpdateRecall persists a new cached recall probability for a word.
	UpdateRecall(ctx context.Context, wordID string, pRecall float64) error
}

// PredictorClient is the interface to the external recall-prediction service.
type PredictorClient interface {
	// Method Predict returns the model-estimated probability of recall for a
	// word, reading the word's interaction history server-side.
	Predict(ctx context.Context, wordID string) (float64, error)
}

const (
	// memorizedFloor/memorizedDecay: memorized words decay slowly from a high
	// baseline.
	memorizedFloor = 0.7
	memorizedDecay = 0.01
	// unmemorizedFloor/unmemorizedDecay: unmemorized words decay faster from
	// a low baseline.
	unmemorizedFloor  = 0.1
	unmemorizedBase   = 0.5
	unmemorizedDecay  = 0.05
	hoursPerDay       = 24
	defaultBatchLimit = 15
)

type recallService struct {
	words      RecallWordsRepository
	predictor  PredictorClient
	runner     background.Runner
	logger     *zap.Logger
	now        func() time.Time
	batchLimit int
}

// NewRecallService creates a new recall service. batchLimit caps how many
// missing predictions one RefreshBatch call requests.
func NewRecallService(words RecallWordsRepository, pred PredictorClient, runner background.Runner, logger *zap.Logger, batchLimit int) *recallService {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &recallService{
		words:      words,
		predictor:  pred,
		runner:     runner,
		logger:     logger,
		now:        time.Now,
		batchLimit: batchLimit,
	}
}

// FallbackRecall is the deterministic prior used until a real prediction is
// cached. Memorized words start high and decay slowly; unmemorized words
// start low and decay faster. Always within [0.1, 1.0].
func FallbackRecall(word *models.Word, now time.Time) float64 {
	daysOld := now.Sub(word.CreatedAt).Hours() / hoursPerDay
	if word.CreatedAt.IsZero() || daysOld < 0 {
		daysOld = 0
	}

	if word.Memorized {
		p := 1 - daysOld*memorizedDecay
		if p < memorizedFloor {
			p = memorizedFloor
		}
		return p
	}

	p := unmemorizedBase - daysOld*unmemorizedDecay
	if p < unmemorizedFloor {
		p = unmemorizedFloor
	}
	return p
}

// CachedOrFallback answers what we currently believe the word's recall
// probability is, without any network call.
func (s *recallService) CachedOrFallback(word *models.Word) float64 {
	if word.PRecall != nil {
		return *word.PRecall
	}
	return FallbackRecall(word, s.now())
}

// RefreshBatch schedules background predictions for up to the batch limit of
// words lacking a cached p_recall. Fire-and-forget: the outcome only updates
// storage for future sessions and never blocks or fails the current one. On
// prediction failure the fallback heuristic value is persisted so future
// reads still have something.
func (s *recallService) RefreshBatch(words []models.Word) {
	var missing []models.Word
	for _, w := range words {
		if w.PRecall == nil {
			missing = append(missing, w)
			if len(missing) >= s.batchLimit {
				break
			}
		}
	}
	if len(missing) == 0 {
		return
	}

	s.logger.Debug("scheduling background recall predictions", zap.Int("count", len(missing)))

	for _, w := range missing {
		word := w
		s.runner.Go("recall.refresh_batch", func(ctx context.Context) error {
			p, err := s.predictor.Predict(ctx, word.ID)
			if err != nil {
				// Persist the heuristic so the word is not re-predicted every
				// session; a real prediction can still replace it later.
				p = FallbackRecall(&word, s.now())
				s.logger.Debug("prediction failed, caching fallback",
					zap.String("word_id", word.ID), zap.Error(err))
			}
			if err := s.words.UpdateRecall(ctx, word.ID, p); err != nil {
				return fmt.Errorf("failed to cache recall for word %s: %w", word.ID, err)
			}
			return nil
		})
	}
}

// RefreshOne re-predicts a single word's recall, typically right after the
// user answered a question so the cached value reflects the latest
// interaction. Persists on success; on failure the previously stored value is
// left untouched and the error is returned as a non-fatal condition for the
// caller to log.
func (s *recallService) RefreshOne(ctx context.Context, wordID string) (float64, error) {
	p, err := s.predictor.Predict(ctx, wordID)
	if err != nil {
		return 0, fmt.Errorf("failed to predict recall for word %s: %w", wordID, err)
	}

	if err := s.words.UpdateRecall(ctx, wordID, p); err != nil {
		// The prediction itself succeeded; return it so callers can still use
		// the fresh value this session.
		s.logger.Warn("failed to persist refreshed recall",
			zap.String("word_id", wordID), zap.Error(err))
		return p, nil
	}

	return p, nil
}

// WarmUp pings the prediction service with a placeholder id so the model is
// loaded before the first real call. Silent and non-blocking.
func (s *recallService) WarmUp() {
	s.runner.Go("recall.warmup", func(ctx context.Context) error {
		_, err := s.predictor.Predict(ctx, predictor.WarmUpWordID)
		// Warm-up failures are expected while the service cold-starts.
		if err != nil {
			s.logger.Debug("recall model warm-up failed", zap.Error(err))
		}
		return nil
	})
}
