package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

// setupStatsRepository creates a repository with a mock database
func setupStatsRepository(t *testing.T) (*userStatsRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewUserStatsRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var statsColumnNames = []string{
	"user_id", "display_name", "weekly_xp", "total_xp", "words_learned", "last_active", "last_week_reset",
}

func TestUserStatsRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := setupStatsRepository(t)
		defer cleanup()

		now := time.Now()
		rows := sqlmock.NewRows(statsColumnNames).
			AddRow("user-1", "polyglot", 120, 900, 42, now, now)
		mock.ExpectQuery(`SELECT .+ FROM user_stats WHERE user_id = \?`).
			WithArgs("user-1").
			WillReturnRows(rows)

		stats, err := repo.Get(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, 120, stats.WeeklyXP)
		assert.Equal(t, 900, stats.TotalXP)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupStatsRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .+ FROM user_stats WHERE user_id = \?`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(statsColumnNames))

		_, err := repo.Get(context.Background(), "user-1")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserStatsRepository_Upsert(t *testing.T) {
	repo, mock, cleanup := setupStatsRepository(t)
	defer cleanup()

	now := time.Now()
	stats := &models.UserStats{
		UserID:        "user-1",
		WeeklyXP:      120,
		TotalXP:       900,
		WordsLearned:  42,
		LastActive:    now,
		LastWeekReset: now,
	}

	mock.ExpectExec(`INSERT INTO user_stats .+ ON DUPLICATE KEY UPDATE`).
		WithArgs("user-1", "", 120, 900, 42, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), stats)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStatsRepository_TopByXP(t *testing.T) {
	tests := []struct {
		name      string
		timeframe models.Timeframe
		orderBy   string
	}{
		{name: "weekly ranks by weekly xp", timeframe: models.TimeframeWeekly, orderBy: "weekly_xp"},
		{name: "alltime ranks by total xp", timeframe: models.TimeframeAllTime, orderBy: "total_xp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupStatsRepository(t)
			defer cleanup()

			now := time.Now()
			rows := sqlmock.NewRows(statsColumnNames).
				AddRow("u-1", "", 300, 5000, 10, now, now).
				AddRow("u-2", "", 200, 9000, 20, now, now)
			mock.ExpectQuery(`SELECT .+ FROM user_stats ORDER BY ` + tt.orderBy + ` DESC LIMIT \?`).
				WithArgs(30).
				WillReturnRows(rows)

			stats, err := repo.TopByXP(context.Background(), tt.timeframe, 30)

			assert.NoError(t, err)
			assert.Len(t, stats, 2)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserStatsRepository_Rank(t *testing.T) {
	repo, mock, cleanup := setupStatsRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"rank"}).AddRow(57)
	mock.ExpectQuery(`SELECT COUNT\(\*\) \+ 1 FROM user_stats WHERE weekly_xp >`).
		WithArgs("user-1").
		WillReturnRows(rows)

	rank, err := repo.Rank(context.Background(), "user-1", models.TimeframeWeekly)

	assert.NoError(t, err)
	assert.Equal(t, 57, rank)
}
