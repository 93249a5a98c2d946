package models

import "time"

// DifficultyLevel classifies a word by observed quiz accuracy.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// WordStats aggregates a user's quiz history for a single word.
type WordStats struct {
	WordID          string          `json:"wordId"`
	UserID          string          `json:"userId"`
	TotalAttempts   int             `json:"totalAttempts"`
	CorrectAttempts int             `json:"correctAttempts"`
	Accuracy        float64         `json:"accuracy"`
	FirstAttempt    time.Time       `json:"firstAttempt"`
	LastAttempt     time.Time       `json:"lastAttempt"`
	DifficultyLevel DifficultyLevel `json:"difficultyLevel"`
	Box             int             `json:"box"`
	NextReview      time.Time       `json:"nextReview"`
}

// DailyAccuracy is one point on the accuracy-over-time chart.
type DailyAccuracy struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
	Total    int     `json:"total"`
}

// TypeBreakdown counts quiz attempts by presentation mode.
type TypeBreakdown struct {
	Flashcard int `json:"flashcard"`
	MCQ       int `json:"mcq"`
	Fill      int `json:"fill"`
}

// UserAnalytics summarises a user's recent quiz activity.
type UserAnalytics struct {
	TotalAttempts      int             `json:"totalAttempts"`
	TotalCorrect       int             `json:"totalCorrect"`
	OverallAccuracy    float64         `json:"overallAccuracy"`
	AccuracyByDay      []DailyAccuracy `json:"accuracyByDay"`
	HardestWordIDs     []string        `json:"hardestWordIds"`
	TypeBreakdown      TypeBreakdown   `json:"typeBreakdown"`
	UniqueWordsStudied int             `json:"uniqueWordsStudied"`
}
