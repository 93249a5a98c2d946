package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/repositories"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps the per-user progress
// storage methods.
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	Create(ctx context.Context, progress *models.UserProgress) error
	IncrementCompletion(ctx context.Context, userID string, correctCount, totalCount int, now time.Time) error
	ApplyStreak(ctx context.Context, userID string, currentStreak, longestStreak int, lastStudyDate string, resetToday bool, now time.Time) error
	UpdateDailyGoal(ctx context.Context, userID string, goal int, now time.Time) error
}

// ErrInvalidDailyGoal is returned when a daily goal outside the allowed range
// is submitted.
var ErrInvalidDailyGoal = errors.New("daily goal must be between 1 and 500")

const (
	minDailyGoal = 1
	maxDailyGoal = 500
	dateLayout   = "2006-01-02"
)

type progressService struct {
	progress ProgressRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewProgressService creates a new progress service.
func NewProgressService(progress ProgressRepository, logger *zap.Logger) *progressService {
	return &progressService{
		progress: progress,
		logger:   logger,
		now:      time.Now,
	}
}

// GetProgress returns the user's progress record, creating the default one on
// first access.
func (s *progressService) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	progress, err := s.progress.Get(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress = models.NewUserProgress(userID, s.now())
	if err := s.progress.Create(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	s.logger.Info("created progress record", zap.String("user_id", userID))
	return progress, nil
}

// RecordCompletion updates the counters and the streak after a finished quiz
// session. correctCount and totalCount describe the answered portion of the
// session.
func (s *progressService) RecordCompletion(ctx context.Context, userID string, correctCount, totalCount int) (*models.StreakResult, error) {
	// The streak update runs first: on a day change it zeroes today_progress,
	// which must not erase the increments from this very session.
	result, err := s.UpdateStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.progress.IncrementCompletion(ctx, userID, correctCount, totalCount, s.now()); err != nil {
		return nil, fmt.Errorf("failed to increment completion counters: %w", err)
	}

	return result, nil
}

// UpdateStreak advances the user's streak for today. Calendar days are
// evaluated in UTC. Idempotent within a day: a second session today leaves
// the streak unchanged.
func (s *progressService) UpdateStreak(ctx context.Context, userID string) (*models.StreakResult, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	result := &models.StreakResult{CurrentStreak: progress.CurrentStreak}

	if progress.LastStudyDate == today {
		return result, nil
	}

	resetToday := false
	switch progress.LastStudyDate {
	case yesterday:
		result.CurrentStreak = progress.CurrentStreak + 1
		resetToday = true
	case "":
		result.CurrentStreak = 1
	default:
		result.CurrentStreak = 1
		result.StreakBroken = true
		resetToday = true
	}

	longest := progress.LongestStreak
	if result.CurrentStreak > longest {
		longest = result.CurrentStreak
		result.IsNewRecord = true
	}

	if err := s.progress.ApplyStreak(ctx, userID, result.CurrentStreak, longest, today, resetToday, now); err != nil {
		return nil, fmt.Errorf("failed to apply streak: %w", err)
	}

	s.logger.Debug("streak updated",
		zap.String("user_id", userID),
		zap.Int("current_streak", result.CurrentStreak),
		zap.Bool("new_record", result.IsNewRecord))

	return result, nil
}

// UpdateDailyGoal changes the user's daily word goal.
func (s *progressService) UpdateDailyGoal(ctx context.Context, userID string, goal int) (*models.UserProgress, error) {
	if goal < minDailyGoal || goal > maxDailyGoal {
		return nil, ErrInvalidDailyGoal
	}

	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.progress.UpdateDailyGoal(ctx, userID, goal, s.now()); err != nil {
		return nil, fmt.Errorf("failed to update daily goal: %w", err)
	}

	progress.DailyGoal = goal
	return progress, nil
}
