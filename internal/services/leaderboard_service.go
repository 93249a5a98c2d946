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

// UserStatsRepository is the interface that wraps the XP storage methods.
type UserStatsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserStats, error)
	Upsert(ctx context.Context, stats *models.UserStats) error
	TopByXP(ctx context.Context, timeframe models.Timeframe, limit int) ([]models.UserStats, error)
	Rank(ctx context.Context, userID string, timeframe models.Timeframe) (int, error)
}

// ErrInvalidTimeframe is returned for an unknown leaderboard timeframe.
var ErrInvalidTimeframe = errors.New("invalid leaderboard timeframe")

const (
	xpPerCorrectAnswer = 10
	xpPerAttempt       = 5
	leaderboardSize    = 30
)

type leaderboardService struct {
	stats  UserStatsRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(stats UserStatsRepository, logger *zap.Logger) *leaderboardService {
	return &leaderboardService{
		stats:  stats,
		logger: logger,
		now:    time.Now,
	}
}

// startOfWeek truncates t to Monday 00:00 UTC of its ISO week.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordQuizXP awards XP for a completed session: 10 per correct answer plus
// 5 per attempted question. Weekly XP resets lazily when the award lands in a
// later week than the last recorded reset.
func (s *leaderboardService) RecordQuizXP(ctx context.Context, userID string, correctCount, attemptedCount int) error {
	earned := correctCount*xpPerCorrectAnswer + attemptedCount*xpPerAttempt
	if earned <= 0 {
		return nil
	}

	now := s.now().UTC()
	week := startOfWeek(now)

	stats, err := s.stats.Get(ctx, userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		stats = &models.UserStats{UserID: userID, LastWeekReset: week}
	case err != nil:
		return fmt.Errorf("failed to get user stats: %w", err)
	}

	if stats.LastWeekReset.Before(week) {
		stats.WeeklyXP = 0
		stats.LastWeekReset = week
	}

	stats.WeeklyXP += earned
	stats.TotalXP += earned
	stats.WordsLearned += attemptedCount
	stats.LastActive = now

	if err := s.stats.Upsert(ctx, stats); err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}

	s.logger.Debug("awarded quiz xp",
		zap.String("user_id", userID),
		zap.Int("earned", earned),
		zap.Int("weekly_xp", stats.WeeklyXP))

	return nil
}

// Leaderboard returns the ranked top users for the timeframe plus the
// requesting user's own ranked entry when they did not make the list.
func (s *leaderboardService) Leaderboard(ctx context.Context, userID string, timeframe models.Timeframe) (*models.Leaderboard, error) {
	if !timeframe.IsValid() {
		return nil, ErrInvalidTimeframe
	}

	top, err := s.stats.TopByXP(ctx, timeframe, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	board := &models.Leaderboard{Users: make([]models.LeaderboardEntry, 0, len(top))}
	inTop := false
	for i, stats := range top {
		entry := models.LeaderboardEntry{UserStats: stats, Rank: i + 1}
		if stats.UserID == userID {
			inTop = true
			board.CurrentUser = &entry
		}
		board.Users = append(board.Users, entry)
	}

	if !inTop {
		own, err := s.stats.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return board, nil
			}
			return nil, fmt.Errorf("failed to get user stats: %w", err)
		}
		rank, err := s.stats.Rank(ctx, userID, timeframe)
		if err != nil {
			return nil, fmt.Errorf("failed to rank user: %w", err)
		}
		board.CurrentUser = &models.LeaderboardEntry{UserStats: *own, Rank: rank}
	}

	return board, nil
}
