package services

import (
	"context"
	"sync"
	"time"

	"github.com/wordrecall/backend/internal/models"
)

// syncRunner executes background tasks inline so tests can assert on their
// effects without synchronization.
type syncRunner struct {
	mu    sync.Mutex
	names []string
	errs  []error
}

func (r *syncRunner) Go(name string, fn func(ctx context.Context) error) {
	err := fn(context.Background())
	r.mu.Lock()
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// discardRunner drops background tasks entirely.
type discardRunner struct{}

func (discardRunner) Go(string, func(ctx context.Context) error) {}

// mockPredictor is a mock implementation of PredictorClient
type mockPredictor struct {
	mu        sync.Mutex
	values    map[string]float64
	err       error
	predicted []string
}

func (m *mockPredictor) Predict(_ context.Context, wordID string) (float64, error) {
	m.mu.Lock()
	m.predicted = append(m.predicted, wordID)
	m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.values[wordID], nil
}

// mockRecallWords is a mock implementation of RecallWordsRepository
type mockRecallWords struct {
	mu      sync.Mutex
	updated map[string]float64
	err     error
}

func (m *mockRecallWords) UpdateRecall(_ context.Context, wordID string, pRecall float64) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	if m.updated == nil {
		m.updated = map[string]float64{}
	}
	m.updated[wordID] = pRecall
	m.mu.Unlock()
	return nil
}

func testWord(id string, memorized bool, createdAt time.Time) models.Word {
	return models.Word{
		ID:        id,
		UserID:    "user-1",
		Term:      "term-" + id,
		Memorized: memorized,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func floatPtr(v float64) *float64 { return &v }
