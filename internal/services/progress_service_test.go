package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/repositories"
	"go.uber.org/zap"
)

// mockProgressRepo is a mock implementation of ProgressRepository
type mockProgressRepo struct {
	progress *models.UserProgress
	err      error

	created        *models.UserProgress
	incrCorrect    int
	incrTotal      int
	incrCalls      int
	appliedStreak  int
	appliedLongest int
	appliedDate    string
	appliedReset   bool
	applyCalls     int
	updatedGoal    int
}

func (m *mockProgressRepo) Get(_ context.Context, _ string) (*models.UserProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.progress == nil {
		return nil, repositories.ErrNotFound
	}
	return m.progress, nil
}

func (m *mockProgressRepo) Create(_ context.Context, progress *models.UserProgress) error {
	m.created = progress
	m.progress = progress
	return nil
}

func (m *mockProgressRepo) IncrementCompletion(_ context.Context, _ string, correctCount, totalCount int, _ time.Time) error {
	m.incrCorrect, m.incrTotal = correctCount, totalCount
	m.incrCalls++
	return nil
}

func (m *mockProgressRepo) ApplyStreak(_ context.Context, _ string, currentStreak, longestStreak int, lastStudyDate string, resetToday bool, _ time.Time) error {
	m.appliedStreak = currentStreak
	m.appliedLongest = longestStreak
	m.appliedDate = lastStudyDate
	m.appliedReset = resetToday
	m.applyCalls++
	return nil
}

func (m *mockProgressRepo) UpdateDailyGoal(_ context.Context, _ string, goal int, _ time.Time) error {
	m.updatedGoal = goal
	return nil
}

func newProgressService(repo *mockProgressRepo, now time.Time) *progressService {
	svc := NewProgressService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func existingProgress(current, longest int, lastStudyDate string) *models.UserProgress {
	return &models.UserProgress{
		UserID:        "user-1",
		CurrentStreak: current,
		LongestStreak: longest,
		LastStudyDate: lastStudyDate,
		DailyGoal:     models.DefaultDailyGoal,
	}
}

func TestProgressService_GetProgress(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("existing record is returned", func(t *testing.T) {
		repo := &mockProgressRepo{progress: existingProgress(4, 6, "2026-03-14")}
		svc := newProgressService(repo, now)

		progress, err := svc.GetProgress(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 4, progress.CurrentStreak)
		assert.Nil(t, repo.created)
	})

	t.Run("first access creates the default record", func(t *testing.T) {
		repo := &mockProgressRepo{}
		svc := newProgressService(repo, now)

		progress, err := svc.GetProgress(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.NotNil(t, repo.created)
		assert.Equal(t, models.DefaultDailyGoal, progress.DailyGoal)
		assert.Zero(t, progress.CurrentStreak)
		assert.Empty(t, progress.LastStudyDate)
	})

	t.Run("database error is propagated", func(t *testing.T) {
		repo := &mockProgressRepo{err: errors.New("database error")}
		svc := newProgressService(repo, now)

		_, err := svc.GetProgress(context.Background(), "user-1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestProgressService_UpdateStreak(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		progress        *models.UserProgress
		expectedStreak  int
		expectedLongest int
		expectedBroken  bool
		expectedRecord  bool
		expectedReset   bool
		expectApply     bool
	}{
		{
			name:           "second session today is a no-op",
			progress:       existingProgress(4, 6, "2026-03-15"),
			expectedStreak: 4,
			expectApply:    false,
		},
		{
			name:            "consecutive day extends the streak",
			progress:        existingProgress(4, 6, "2026-03-14"),
			expectedStreak:  5,
			expectedLongest: 6,
			expectedReset:   true,
			expectApply:     true,
		},
		{
			name:            "first session ever starts at one",
			progress:        existingProgress(0, 0, ""),
			expectedStreak:  1,
			expectedLongest: 1,
			expectedRecord:  true,
			expectApply:     true,
		},
		{
			name:            "gap resets to one and reports the break",
			progress:        existingProgress(9, 9, "2026-03-10"),
			expectedStreak:  1,
			expectedLongest: 9,
			expectedBroken:  true,
			expectedReset:   true,
			expectApply:     true,
		},
		{
			name:            "extending past the longest sets a new record",
			progress:        existingProgress(6, 6, "2026-03-14"),
			expectedStreak:  7,
			expectedLongest: 7,
			expectedRecord:  true,
			expectedReset:   true,
			expectApply:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProgressRepo{progress: tt.progress}
			svc := newProgressService(repo, now)

			result, err := svc.UpdateStreak(context.Background(), "user-1")

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStreak, result.CurrentStreak)
			assert.Equal(t, tt.expectedBroken, result.StreakBroken)
			assert.Equal(t, tt.expectedRecord, result.IsNewRecord)

			if !tt.expectApply {
				assert.Zero(t, repo.applyCalls)
				return
			}
			assert.Equal(t, 1, repo.applyCalls)
			assert.Equal(t, tt.expectedStreak, repo.appliedStreak)
			assert.Equal(t, tt.expectedLongest, repo.appliedLongest)
			assert.Equal(t, "2026-03-15", repo.appliedDate)
			assert.Equal(t, tt.expectedReset, repo.appliedReset)
		})
	}
}

func TestProgressService_RecordCompletion(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	repo := &mockProgressRepo{progress: existingProgress(2, 5, "2026-03-14")}
	svc := newProgressService(repo, now)

	result, err := svc.RecordCompletion(context.Background(), "user-1", 7, 10)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 1, repo.incrCalls)
	assert.Equal(t, 7, repo.incrCorrect)
	assert.Equal(t, 10, repo.incrTotal)
	// The day rollover reset must land before the increments so today's
	// counters survive.
	assert.Equal(t, 1, repo.applyCalls)
}

func TestProgressService_UpdateDailyGoal(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		goal          int
		expectedError error
	}{
		{name: "valid goal", goal: 30},
		{name: "minimum goal", goal: 1},
		{name: "zero is rejected", goal: 0, expectedError: ErrInvalidDailyGoal},
		{name: "negative is rejected", goal: -5, expectedError: ErrInvalidDailyGoal},
		{name: "excessive goal is rejected", goal: 1000, expectedError: ErrInvalidDailyGoal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProgressRepo{progress: existingProgress(0, 0, "")}
			svc := newProgressService(repo, now)

			progress, err := svc.UpdateDailyGoal(context.Background(), "user-1", tt.goal)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.goal, progress.DailyGoal)
			assert.Equal(t, tt.goal, repo.updatedGoal)
		})
	}
}
