package models

import "time"

// InteractionType identifies the kind of event recorded in the interaction log.
type InteractionType string

const (
	InteractionViewWord        InteractionType = "view_word"
	InteractionOpenDefinition  InteractionType = "open_definition"
	InteractionCloseDefinition InteractionType = "close_definition"
	InteractionListenAudio     InteractionType = "listen_audio"
	InteractionExpandExample   InteractionType = "expand_example"
	InteractionTimeSpent       InteractionType = "time_spent"
	InteractionQuizFlashcard   InteractionType = "quiz_flashcard"
	InteractionQuizMCQ         InteractionType = "quiz_mcq"
	InteractionQuizFill        InteractionType = "quiz_fill"
)

// quizInteractionTypes are the event types counted as quiz attempts.
var quizInteractionTypes = map[InteractionType]bool{
	InteractionQuizFlashcard: true,
	InteractionQuizMCQ:       true,
	InteractionQuizFill:      true,
}

// IsValid reports whether t belongs to the closed set of interaction types.
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionViewWord, InteractionOpenDefinition, InteractionCloseDefinition,
		InteractionListenAudio, InteractionExpandExample, InteractionTimeSpent,
		InteractionQuizFlashcard, InteractionQuizMCQ, InteractionQuizFill:
		return true
	}
	return false
}

// IsQuiz reports whether t is one of the quiz answer types.
func (t InteractionType) IsQuiz() bool {
	return quizInteractionTypes[t]
}

// QuizInteractionType maps a quiz mode (flashcard, mcq, fill) to its log type.
func QuizInteractionType(mode QuizMode) InteractionType {
	return InteractionType("quiz_" + string(mode))
}

// InteractionLog is an immutable event record. Entries are append-only and
// never mutated or deleted except on full account erasure.
type InteractionLog struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	WordID       string          `json:"wordId"`
	Type         InteractionType `json:"type"`
	Correct      bool            `json:"correct"`
	Timestamp    time.Time       `json:"timestamp"`
	PRecallAfter *float64        `json:"p_recall_after,omitempty"`
	Extra        map[string]any  `json:"extra,omitempty"`
}

// InteractionEvent is a single client-reported event inside a batch upload.
type InteractionEvent struct {
	WordID string          `json:"wordId"`
	Type   InteractionType `json:"type"`
	Extra  map[string]any  `json:"extra,omitempty"`
}
