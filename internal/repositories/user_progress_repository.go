package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

type userProgressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserProgressRepository creates a new user progress repository
func NewUserProgressRepository(db *sql.DB, logger *zap.Logger) *userProgressRepository {
	return &userProgressRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the singleton progress record for a user. Returns ErrNotFound
// when the record has not been created yet.
func (r *userProgressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_study_date, daily_goal,
			today_progress, total_words_studied, total_quizzes_taken, total_correct_answers,
			created_at, updated_at
		FROM user_progress
		WHERE user_id = ?
	`

	var p models.UserProgress
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.CurrentStreak, &p.LongestStreak, &p.LastStudyDate, &p.DailyGoal,
		&p.TodayProgress, &p.TotalWordsStudied, &p.TotalQuizzesTaken, &p.TotalCorrectAnswers,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to query user progress", zap.Error(err))
		return nil, fmt.Errorf("failed to query user progress: %w", err)
	}

	return &p, nil
}

// Create inserts the default progress record for a user.
func (r *userProgressRepository) Create(ctx context.Context, progress *models.UserProgress) error {
	query := `
		INSERT INTO user_progress (user_id, current_streak, longest_streak, last_study_date, daily_goal,
			today_progress, total_words_studied, total_quizzes_taken, total_correct_answers,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		progress.UserID, progress.CurrentStreak, progress.LongestStreak, progress.LastStudyDate,
		progress.DailyGoal, progress.TodayProgress, progress.TotalWordsStudied,
		progress.TotalQuizzesTaken, progress.TotalCorrectAnswers,
		progress.CreatedAt, progress.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert user progress", zap.Error(err))
		return fmt.Errorf("failed to insert user progress: %w", err)
	}

	return nil
}

// IncrementCompletion applies the per-completion counter updates as atomic
// increments, not read-modify-write, so concurrent sessions stay correct.
func (r *userProgressRepository) IncrementCompletion(ctx context.Context, userID string, correctCount, totalCount int, now time.Time) error {
	query := `
		UPDATE user_progress
		SET total_quizzes_taken = total_quizzes_taken + 1,
			total_correct_answers = total_correct_answers + ?,
			today_progress = today_progress + ?,
			total_words_studied = total_words_studied + ?,
			updated_at = ?
		WHERE user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, correctCount, totalCount, totalCount, now, userID)
	if err != nil {
		r.logger.Error("failed to increment completion counters", zap.Error(err))
		return fmt.Errorf("failed to increment completion counters: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ApplyStreak persists the outcome of a streak update. todayProgress is reset
// only when the streak day changed.
func (r *userProgressRepository) ApplyStreak(ctx context.Context, userID string, currentStreak, longestStreak int, lastStudyDate string, resetToday bool, now time.Time) error {
	query := `
		UPDATE user_progress
		SET current_streak = ?, longest_streak = ?, last_study_date = ?, updated_at = ?
		WHERE user_id = ?
	`
	if resetToday {
		query = `
		UPDATE user_progress
		SET current_streak = ?, longest_streak = ?, last_study_date = ?, updated_at = ?, today_progress = 0
		WHERE user_id = ?
	`
	}

	result, err := r.db.ExecContext(ctx, query, currentStreak, longestStreak, lastStudyDate, now, userID)
	if err != nil {
		r.logger.Error("failed to apply streak update", zap.Error(err))
		return fmt.Errorf("failed to apply streak update: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateDailyGoal sets a new daily goal.
func (r *userProgressRepository) UpdateDailyGoal(ctx context.Context, userID string, goal int, now time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_progress SET daily_goal = ?, updated_at = ? WHERE user_id = ?`,
		goal, now, userID,
	)
	if err != nil {
		r.logger.Error("failed to update daily goal", zap.Error(err))
		return fmt.Errorf("failed to update daily goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the user's progress record (account erasure only).
func (r *userProgressRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = ?`, userID)
	if err != nil {
		r.logger.Error("failed to delete user progress", zap.Error(err))
		return fmt.Errorf("failed to delete user progress: %w", err)
	}

	return nil
}
