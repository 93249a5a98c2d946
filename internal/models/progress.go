package models

import "time"

// DefaultDailyGoal is the number of words a new user is expected to study per day.
const DefaultDailyGoal = 20

// UserProgress is the singleton per-user streak and daily-goal record.
//
// LastStudyDate is a YYYY-MM-DD calendar date string; empty means the user has
// never completed a session. The total counters are monotonically
// non-decreasing and updated with atomic increments so concurrent sessions do
// not lose updates.
type UserProgress struct {
	UserID              string    `json:"userId"`
	CurrentStreak       int       `json:"currentStreak"`
	LongestStreak       int       `json:"longestStreak"`
	LastStudyDate       string    `json:"lastStudyDate"`
	DailyGoal           int       `json:"dailyGoal"`
	TodayProgress       int       `json:"todayProgress"`
	TotalWordsStudied   int       `json:"totalWordsStudied"`
	TotalQuizzesTaken   int       `json:"totalQuizzesTaken"`
	TotalCorrectAnswers int       `json:"totalCorrectAnswers"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// NewUserProgress returns the default progress record created lazily on first access.
func NewUserProgress(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:    userID,
		DailyGoal: DefaultDailyGoal,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StreakResult describes the outcome of a streak update so the caller can
// present celebratory feedback.
type StreakResult struct {
	CurrentStreak int  `json:"currentStreak"`
	IsNewRecord   bool `json:"isNewRecord"`
	StreakBroken  bool `json:"streakBroken"`
}
