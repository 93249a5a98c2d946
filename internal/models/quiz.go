package models

// QuizMode selects how a question is presented to the learner.
type QuizMode string

const (
	QuizModeFlashcard QuizMode = "flashcard"
	QuizModeMCQ       QuizMode = "mcq"
	QuizModeFill      QuizMode = "fill"
)

// IsValid reports whether m is a known quiz mode.
func (m QuizMode) IsValid() bool {
	switch m {
	case QuizModeFlashcard, QuizModeMCQ, QuizModeFill:
		return true
	}
	return false
}

// SessionState is the lifecycle state of a quiz session.
type SessionState string

const (
	// SessionActive means the session has a queue and accepts answers.
	SessionActive SessionState = "active"
	// SessionFinished is terminal; the session object is never reused.
	SessionFinished SessionState = "finished"
	// SessionNoWords is a terminal state distinct from finished: the user has
	// no vocabulary yet and should be shown a call to action, not an error.
	SessionNoWords SessionState = "no_words"
)

// QuizWord is a word paired with the recall probability used for sampling.
type QuizWord struct {
	Word   Word    `json:"word"`
	Recall float64 `json:"recall"`
}

// QuizAnswer records one answered question within a session.
type QuizAnswer struct {
	Word    QuizWord `json:"word"`
	Correct bool     `json:"correct"`
}

// SessionView is the client-facing snapshot of a quiz session.
type SessionView struct {
	ID           string       `json:"id"`
	State        SessionState `json:"state"`
	CurrentIndex int          `json:"currentIndex"`
	QueueLength  int          `json:"queueLength"`
	Answered     int          `json:"answered"`
	Score        int          `json:"score"`
	Queue        []QuizWord   `json:"queue,omitempty"`
	Results      []QuizAnswer `json:"results,omitempty"`
}

// AnswerResult is returned after each recorded answer. Streak is populated
// only when the answer finished the session.
type AnswerResult struct {
	Session *SessionView  `json:"session"`
	Streak  *StreakResult `json:"streak,omitempty"`
}
