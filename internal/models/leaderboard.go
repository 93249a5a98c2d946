package models

import "time"

// Timeframe selects the XP column used for leaderboard ranking.
type Timeframe string

const (
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeAllTime Timeframe = "alltime"
)

// IsValid reports whether t is a known leaderboard timeframe.
func (t Timeframe) IsValid() bool {
	return t == TimeframeWeekly || t == TimeframeAllTime
}

// UserStats holds a user's XP counters for the leaderboard. WeeklyXP resets
// when a quiz completion lands in a new week (weeks start Monday 00:00 UTC).
type UserStats struct {
	UserID        string    `json:"userId"`
	DisplayName   string    `json:"displayName"`
	WeeklyXP      int       `json:"weeklyXP"`
	TotalXP       int       `json:"totalXP"`
	WordsLearned  int       `json:"wordsLearned"`
	LastActive    time.Time `json:"lastActive"`
	LastWeekReset time.Time `json:"lastWeekReset"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	UserStats
	Rank int `json:"rank"`
}

// Leaderboard is the ranked top list plus the requesting user's own entry
// when they fall outside it.
type Leaderboard struct {
	Users       []LeaderboardEntry `json:"users"`
	CurrentUser *LeaderboardEntry  `json:"currentUser,omitempty"`
}
