package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

// AnalyticsLogRepository reads the quiz portion of the interaction log.
type AnalyticsLogRepository interface {
	GetQuizByWord(ctx context.Context, userID string, wordID string) ([]models.InteractionLog, error)
	GetRecentQuiz(ctx context.Context, userID string, limit int) ([]models.InteractionLog, error)
}

// leitnerIntervals are the spaced-repetition review intervals in days per box.
var leitnerIntervals = [...]int{0, 1, 3, 7, 14}

const (
	easyAccuracyCutoff   = 0.8
	mediumAccuracyCutoff = 0.5
	recentEventsWindow   = 1000
	hardestWordsLimit    = 10
	hardestWordsMinTries = 3
)

type analyticsService struct {
	logs   AnalyticsLogRepository
	logger *zap.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(logs AnalyticsLogRepository, logger *zap.Logger) *analyticsService {
	return &analyticsService{logs: logs, logger: logger}
}

// WordStats derives the per-word study statistics from the word's quiz
// history. The Leitner box equals the trailing run of correct answers capped
// at the last interval, and the next review date is the last attempt plus
// that box's interval.
func (s *analyticsService) WordStats(ctx context.Context, userID, wordID string) (*models.WordStats, error) {
	history, err := s.logs.GetQuizByWord(ctx, userID, wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz history: %w", err)
	}

	stats := &models.WordStats{
		WordID:          wordID,
		UserID:          userID,
		DifficultyLevel: models.DifficultyMedium,
	}
	if len(history) == 0 {
		return stats, nil
	}

	stats.TotalAttempts = len(history)
	for _, entry := range history {
		if entry.Correct {
			stats.CorrectAttempts++
		}
	}
	stats.Accuracy = float64(stats.CorrectAttempts) / float64(stats.TotalAttempts)
	stats.FirstAttempt = history[0].Timestamp
	stats.LastAttempt = history[len(history)-1].Timestamp
	stats.DifficultyLevel = difficultyFor(stats.Accuracy)

	// History is ordered oldest first; the box is the streak of correct
	// answers at the end of it.
	box := 0
	for i := len(history) - 1; i >= 0 && history[i].Correct; i-- {
		box++
	}
	if box > len(leitnerIntervals)-1 {
		box = len(leitnerIntervals) - 1
	}
	stats.Box = box
	stats.NextReview = stats.LastAttempt.AddDate(0, 0, leitnerIntervals[box])

	return stats, nil
}

// UserAnalytics summarises the user's most recent quiz activity, bounded to
// the last recentEventsWindow log entries.
func (s *analyticsService) UserAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	events, err := s.logs.GetRecentQuiz(ctx, userID, recentEventsWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent quiz events: %w", err)
	}

	analytics := &models.UserAnalytics{
		AccuracyByDay:  []models.DailyAccuracy{},
		HardestWordIDs: []string{},
	}
	if len(events) == 0 {
		return analytics, nil
	}

	type dayAgg struct{ total, correct int }
	type wordAgg struct{ total, correct int }
	byDay := make(map[string]*dayAgg)
	byWord := make(map[string]*wordAgg)

	for _, e := range events {
		analytics.TotalAttempts++
		if e.Correct {
			analytics.TotalCorrect++
		}

		day := e.Timestamp.UTC().Format(dateLayout)
		if byDay[day] == nil {
			byDay[day] = &dayAgg{}
		}
		byDay[day].total++
		if e.Correct {
			byDay[day].correct++
		}

		if byWord[e.WordID] == nil {
			byWord[e.WordID] = &wordAgg{}
		}
		byWord[e.WordID].total++
		if e.Correct {
			byWord[e.WordID].correct++
		}

		switch e.Type {
		case models.InteractionQuizFlashcard:
			analytics.TypeBreakdown.Flashcard++
		case models.InteractionQuizMCQ:
			analytics.TypeBreakdown.MCQ++
		case models.InteractionQuizFill:
			analytics.TypeBreakdown.Fill++
		}
	}

	analytics.OverallAccuracy = float64(analytics.TotalCorrect) / float64(analytics.TotalAttempts)
	analytics.UniqueWordsStudied = len(byWord)

	for day, agg := range byDay {
		analytics.AccuracyByDay = append(analytics.AccuracyByDay, models.DailyAccuracy{
			Date:     day,
			Accuracy: float64(agg.correct) / float64(agg.total),
			Total:    agg.total,
		})
	}
	sort.Slice(analytics.AccuracyByDay, func(i, j int) bool {
		return analytics.AccuracyByDay[i].Date < analytics.AccuracyByDay[j].Date
	})

	type hardWord struct {
		wordID   string
		accuracy float64
		total    int
	}
	hardest := make([]hardWord, 0, len(byWord))
	for wordID, agg := range byWord {
		if agg.total < hardestWordsMinTries {
			continue
		}
		hardest = append(hardest, hardWord{
			wordID:   wordID,
			accuracy: float64(agg.correct) / float64(agg.total),
			total:    agg.total,
		})
	}
	sort.Slice(hardest, func(i, j int) bool {
		if hardest[i].accuracy != hardest[j].accuracy {
			return hardest[i].accuracy < hardest[j].accuracy
		}
		if hardest[i].total != hardest[j].total {
			return hardest[i].total > hardest[j].total
		}
		return hardest[i].wordID < hardest[j].wordID
	})
	for i := 0; i < len(hardest) && i < hardestWordsLimit; i++ {
		analytics.HardestWordIDs = append(analytics.HardestWordIDs, hardest[i].wordID)
	}

	return analytics, nil
}

// NextReviewDue reports whether a word is due for review given its stats.
func NextReviewDue(stats *models.WordStats, now time.Time) bool {
	if stats.TotalAttempts == 0 {
		return true
	}
	return !now.Before(stats.NextReview)
}

func difficultyFor(accuracy float64) models.DifficultyLevel {
	switch {
	case accuracy >= easyAccuracyCutoff:
		return models.DifficultyEasy
	case accuracy >= mediumAccuracyCutoff:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}
