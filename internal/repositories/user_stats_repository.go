package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

type userStatsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserStatsRepository creates a new user stats repository
func NewUserStatsRepository(db *sql.DB, logger *zap.Logger) *userStatsRepository {
	return &userStatsRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a user's XP stats. Returns ErrNotFound when the user has no
// stats row yet.
func (r *userStatsRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	query := `
		SELECT user_id, display_name, weekly_xp, total_xp, words_learned, last_active, last_week_reset
		FROM user_stats
		WHERE user_id = ?
	`

	var s models.UserStats
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.DisplayName, &s.WeeklyXP, &s.TotalXP, &s.WordsLearned, &s.LastActive, &s.LastWeekReset,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to query user stats", zap.Error(err))
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}

	return &s, nil
}

// Upsert writes a user's XP stats, creating the row on first activity.
func (r *userStatsRepository) Upsert(ctx context.Context, stats *models.UserStats) error {
	query := `
		INSERT INTO user_stats (user_id, display_name, weekly_xp, total_xp, words_learned, last_active, last_week_reset)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			display_name = VALUES(display_name),
			weekly_xp = VALUES(weekly_xp),
			total_xp = VALUES(total_xp),
			words_learned = VALUES(words_learned),
			last_active = VALUES(last_active),
			last_week_reset = VALUES(last_week_reset)
	`

	_, err := r.db.ExecContext(ctx, query,
		stats.UserID, stats.DisplayName, stats.WeeklyXP, stats.TotalXP,
		stats.WordsLearned, stats.LastActive, stats.LastWeekReset,
	)
	if err != nil {
		r.logger.Error("failed to upsert user stats", zap.Error(err))
		return fmt.Errorf("failed to upsert user stats: %w", err)
	}

	return nil
}

// TopByXP returns the highest-ranked users for a timeframe, limited to the
// leaderboard page size.
func (r *userStatsRepository) TopByXP(ctx context.Context, timeframe models.Timeframe, limit int) ([]models.UserStats, error) {
	query := fmt.Sprintf(`
		SELECT user_id, display_name, weekly_xp, total_xp, words_learned, last_active, last_week_reset
		FROM user_stats
		ORDER BY %s DESC
		LIMIT ?
	`, xpColumn(timeframe))

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to query leaderboard", zap.Error(err))
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var stats []models.UserStats
	for rows.Next() {
		var s models.UserStats
		if err := rows.Scan(
			&s.UserID, &s.DisplayName, &s.WeeklyXP, &s.TotalXP, &s.WordsLearned, &s.LastActive, &s.LastWeekReset,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stats, nil
}

// Rank returns a user's 1-based leaderboard position for a timeframe.
func (r *userStatsRepository) Rank(ctx context.Context, userID string, timeframe models.Timeframe) (int, error) {
	column := xpColumn(timeframe)
	query := fmt.Sprintf(`
		SELECT COUNT(*) + 1
		FROM user_stats
		WHERE %s > (SELECT %s FROM user_stats WHERE user_id = ?)
	`, column, column)

	var rank int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&rank)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		r.logger.Error("failed to query rank", zap.Error(err))
		return 0, fmt.Errorf("failed to query rank: %w", err)
	}

	return rank, nil
}

// Delete removes the user's stats row (account erasure only).
func (r *userStatsRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_stats WHERE user_id = ?`, userID)
	if err != nil {
		r.logger.Error("failed to delete user stats", zap.Error(err))
		return fmt.Errorf("failed to delete user stats: %w", err)
	}

	return nil
}

func xpColumn(timeframe models.Timeframe) string {
	if timeframe == models.TimeframeWeekly {
		return "weekly_xp"
	}
	return "total_xp"
}
