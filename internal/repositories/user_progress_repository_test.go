package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

// setupProgressRepository creates a repository with a mock database
func setupProgressRepository(t *testing.T) (*userProgressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewUserProgressRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var progressColumnNames = []string{
	"user_id", "current_streak", "longest_streak", "last_study_date", "daily_goal",
	"today_progress", "total_words_studied", "total_quizzes_taken", "total_correct_answers",
	"created_at", "updated_at",
}

func TestUserProgressRepository_Get(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedGoal  int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				now := time.Now()
				rows := sqlmock.NewRows(progressColumnNames).
					AddRow("user-1", 4, 6, "2026-03-14", 20, 5, 100, 12, 80, now, now)
				mock.ExpectQuery(`SELECT .+ FROM user_progress WHERE user_id = \?`).
					WithArgs("user-1").
					WillReturnRows(rows)
			},
			expectedGoal: 20,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM user_progress WHERE user_id = \?`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows(progressColumnNames))
			},
			expectedError: ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM user_progress WHERE user_id = \?`).
					WithArgs("user-1").
					WillReturnError(errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupProgressRepository(t)
			defer cleanup()
			tt.setupMock(mock)

			progress, err := repo.Get(context.Background(), "user-1")

			if tt.expectedError != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectedError, ErrNotFound) {
					assert.ErrorIs(t, err, ErrNotFound)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedGoal, progress.DailyGoal)
			assert.Equal(t, 4, progress.CurrentStreak)
		})
	}
}

func TestUserProgressRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupProgressRepository(t)
	defer cleanup()

	now := time.Now()
	progress := models.NewUserProgress("user-1", now)

	mock.ExpectExec(`INSERT INTO user_progress`).
		WithArgs("user-1", 0, 0, "", models.DefaultDailyGoal, 0, 0, 0, 0, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), progress)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserProgressRepository_IncrementCompletion(t *testing.T) {
	t.Run("atomic increments with the session counts", func(t *testing.T) {
		repo, mock, cleanup := setupProgressRepository(t)
		defer cleanup()

		now := time.Now()
		mock.ExpectExec(`UPDATE user_progress SET total_quizzes_taken = total_quizzes_taken \+ 1`).
			WithArgs(7, 10, 10, now, "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.IncrementCompletion(context.Background(), "user-1", 7, 10, now)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		repo, mock, cleanup := setupProgressRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE user_progress SET total_quizzes_taken`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.IncrementCompletion(context.Background(), "user-1", 7, 10, time.Now())

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserProgressRepository_ApplyStreak(t *testing.T) {
	t.Run("same-day update keeps today progress", func(t *testing.T) {
		repo, mock, cleanup := setupProgressRepository(t)
		defer cleanup()

		now := time.Now()
		mock.ExpectExec(`UPDATE user_progress SET current_streak = \?, longest_streak = \?, last_study_date = \?, updated_at = \? WHERE user_id = \?`).
			WithArgs(1, 1, "2026-03-15", now, "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ApplyStreak(context.Background(), "user-1", 1, 1, "2026-03-15", false, now)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("day change zeroes today progress", func(t *testing.T) {
		repo, mock, cleanup := setupProgressRepository(t)
		defer cleanup()

		now := time.Now()
		mock.ExpectExec(`UPDATE user_progress SET current_streak = \?, longest_streak = \?, last_study_date = \?, updated_at = \?, today_progress = 0 WHERE user_id = \?`).
			WithArgs(5, 6, "2026-03-15", now, "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ApplyStreak(context.Background(), "user-1", 5, 6, "2026-03-15", true, now)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserProgressRepository_UpdateDailyGoal(t *testing.T) {
	repo, mock, cleanup := setupProgressRepository(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectExec(`UPDATE user_progress SET daily_goal = \?, updated_at = \? WHERE user_id = \?`).
		WithArgs(30, now, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateDailyGoal(context.Background(), "user-1", 30, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
