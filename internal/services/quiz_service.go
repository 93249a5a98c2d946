package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordrecall/backend/internal/background"
	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/sampling"
	"go.uber.org/zap"
)

// QuizWordsRepository is the interface that wraps the word storage methods
// the quiz service needs.
type QuizWordsRepository interface {
	GetByOwner(ctx context.Context, userID string) ([]models.Word, error)
	GetByIDs(ctx context.Context, userID string, ids []string) ([]models.Word, error)
	RecordAnswer(ctx context.Context, wordID string, correct bool, now time.Time) error
}

// QuizLogRepository records quiz answers in the interaction log.
type QuizLogRepository interface {
	Insert(ctx context.Context, log *models.InteractionLog) error
}

// RecallProvider supplies recall probabilities for sampling and keeps the
// cached values fresh.
type RecallProvider interface {
	CachedOrFallback(word *models.Word) float64
	RefreshBatch(words []models.Word)
	RefreshOne(ctx context.Context, wordID string) (float64, error)
}

// ProgressRecorder updates streaks and counters when a session completes.
type ProgressRecorder interface {
	RecordCompletion(ctx context.Context, userID string, correctCount, totalCount int) (*models.StreakResult, error)
}

// XPRecorder awards experience points for a completed session.
type XPRecorder interface {
	RecordQuizXP(ctx context.Context, userID string, correctCount, attemptedCount int) error
}

var (
	// ErrSessionNotFound is returned when the session id is unknown or belongs
	// to another user.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned when an answer arrives for a finished or
	// empty session.
	ErrSessionNotActive = errors.New("quiz session is not active")
	// ErrAnswerInProgress is returned when a second answer arrives while the
	// previous one is still being recorded.
	ErrAnswerInProgress = errors.New("previous answer is still being processed")
	// ErrInvalidQuizMode is returned for an unknown quiz mode.
	ErrInvalidQuizMode = errors.New("invalid quiz mode")
	// ErrNothingAnswered is returned when a session is finished early before
	// any question was answered.
	ErrNothingAnswered = errors.New("no questions answered yet")
)

// quizSession is the server-side state of one quiz run. All fields are
// guarded by mu.
type quizSession struct {
	mu        sync.Mutex
	id        string
	userID    string
	mode      models.QuizMode
	queue     []models.QuizWord
	index     int
	score     int
	results   []models.QuizAnswer
	state     models.SessionState
	answering bool
}

func (s *quizSession) view() *models.SessionView {
	view := &models.SessionView{
		ID:           s.id,
		State:        s.state,
		CurrentIndex: s.index,
		QueueLength:  len(s.queue),
		Answered:     len(s.results),
		Score:        s.score,
	}
	view.Queue = append(view.Queue, s.queue...)
	view.Results = append(view.Results, s.results...)
	return view
}

type quizService struct {
	words       QuizWordsRepository
	logs        QuizLogRepository
	recall      RecallProvider
	progress    ProgressRecorder
	xp          XPRecorder
	runner      background.Runner
	logger      *zap.Logger
	now         func() time.Time
	sessionSize int
	beta        float64

	mu       sync.RWMutex
	sessions map[string]*quizSession

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewQuizService creates a new quiz service. Sessions live in memory only;
// a restart discards active sessions, which is acceptable because sessions
// are short-lived and the interaction log is the durable record.
func NewQuizService(
	words QuizWordsRepository,
	logs QuizLogRepository,
	recall RecallProvider,
	progress ProgressRecorder,
	xp XPRecorder,
	runner background.Runner,
	logger *zap.Logger,
	sessionSize int,
	beta float64,
) *quizService {
	if sessionSize <= 0 {
		sessionSize = 10
	}
	if beta <= 0 {
		beta = sampling.DefaultBeta
	}
	return &quizService{
		words:       words,
		logs:        logs,
		recall:      recall,
		progress:    progress,
		xp:          xp,
		runner:      runner,
		logger:      logger,
		now:         time.Now,
		sessionSize: sessionSize,
		beta:        beta,
		sessions:    make(map[string]*quizSession),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartSession builds a new quiz queue for the user by sampling their
// vocabulary, weighted toward words with low recall probability. Any
// previous active session of the same user is discarded.
func (s *quizService) StartSession(ctx context.Context, userID string, mode models.QuizMode) (*models.SessionView, error) {
	if !mode.IsValid() {
		return nil, ErrInvalidQuizMode
	}

	pool, err := s.words.GetByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}

	if len(pool) == 0 {
		return &models.SessionView{
			ID:    uuid.New().String(),
			State: models.SessionNoWords,
		}, nil
	}

	// Words without a cached prediction get one in the background for future
	// sessions; this session uses the heuristic value immediately.
	s.recall.RefreshBatch(pool)

	recalls := make([]float64, len(pool))
	for i := range pool {
		recalls[i] = s.recall.CachedOrFallback(&pool[i])
	}

	s.rngMu.Lock()
	picked := sampling.ByRecall(recalls, s.sessionSize, s.beta, s.rng)
	s.rngMu.Unlock()

	queue := make([]models.QuizWord, 0, len(picked))
	for _, idx := range picked {
		queue = append(queue, models.QuizWord{Word: pool[idx], Recall: recalls[idx]})
	}

	session := &quizSession{
		id:     uuid.New().String(),
		userID: userID,
		mode:   mode,
		queue:  queue,
		state:  models.SessionActive,
	}

	s.mu.Lock()
	for id, existing := range s.sessions {
		if existing.userID == userID {
			delete(s.sessions, id)
		}
	}
	s.sessions[session.id] = session
	s.mu.Unlock()

	s.logger.Info("quiz session started",
		zap.String("session_id", session.id),
		zap.String("user_id", userID),
		zap.String("mode", string(mode)),
		zap.Int("queue_length", len(queue)),
		zap.Int("pool_size", len(pool)))

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.view(), nil
}

// GetSession returns the current snapshot of a session.
func (s *quizService) GetSession(sessionID, userID string) (*models.SessionView, error) {
	session, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.view(), nil
}

// Answer records the result for the current question and advances the queue.
// The interaction log entry, the per-word counters and the recall refresh run
// as a single ordered background task so the prediction always sees the new
// log entry. Answering the last question finishes the session.
func (s *quizService) Answer(ctx context.Context, sessionID, userID string, correct bool) (*models.AnswerResult, error) {
	session, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.state != models.SessionActive {
		session.mu.Unlock()
		return nil, ErrSessionNotActive
	}
	if session.answering {
		session.mu.Unlock()
		return nil, ErrAnswerInProgress
	}
	session.answering = true

	current := session.queue[session.index]
	session.results = append(session.results, models.QuizAnswer{Word: current, Correct: correct})
	if correct {
		session.score++
	}
	session.index++

	finished := session.index >= len(session.queue)
	if finished {
		session.state = models.SessionFinished
	}
	score, answered := session.score, len(session.results)
	mode := session.mode
	session.mu.Unlock()

	s.recordAnswer(userID, current.Word.ID, mode, correct)

	result := &models.AnswerResult{}
	if finished {
		result.Streak = s.completeSession(ctx, session.id, userID, score, answered)
	}

	session.mu.Lock()
	session.answering = false
	result.Session = session.view()
	session.mu.Unlock()
	return result, nil
}

// FinishEarly ends an active session after at least one answer, scoring only
// the answered portion. The answered words are re-read from storage and
// their recall refreshed synchronously so the summary shows post-session
// values.
func (s *quizService) FinishEarly(ctx context.Context, sessionID, userID string) (*models.AnswerResult, error) {
	session, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.state != models.SessionActive {
		session.mu.Unlock()
		return nil, ErrSessionNotActive
	}
	if len(session.results) == 0 {
		session.mu.Unlock()
		return nil, ErrNothingAnswered
	}
	session.state = models.SessionFinished
	score, answered := session.score, len(session.results)
	answeredIDs := make([]string, len(session.results))
	indexByID := make(map[string]int, len(session.results))
	for i, res := range session.results {
		answeredIDs[i] = res.Word.Word.ID
		indexByID[res.Word.Word.ID] = i
	}
	session.mu.Unlock()

	// Refresh exactly the answered words so the summary reflects the answers
	// just given. Failures fall back to the values already in the results.
	if fresh, err := s.words.GetByIDs(ctx, userID, answeredIDs); err == nil {
		for i := range fresh {
			idx, ok := indexByID[fresh[i].ID]
			if !ok {
				continue
			}
			p, err := s.recall.RefreshOne(ctx, fresh[i].ID)
			if err != nil {
				p = s.recall.CachedOrFallback(&fresh[i])
			}
			session.mu.Lock()
			session.results[idx].Word.Word = fresh[i]
			session.results[idx].Word.Recall = p
			session.mu.Unlock()
		}
	} else {
		s.logger.Warn("failed to reload words for early finish",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	result := &models.AnswerResult{
		Streak: s.completeSession(ctx, sessionID, userID, score, answered),
	}

	session.mu.Lock()
	result.Session = session.view()
	session.mu.Unlock()
	return result, nil
}

func (s *quizService) lookup(sessionID, userID string) (*quizSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || session.userID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// recordAnswer runs the per-answer persistence pipeline in one background
// task: log entry first, then the word counters, then the recall refresh
// that reads the updated log.
func (s *quizService) recordAnswer(userID, wordID string, mode models.QuizMode, correct bool) {
	now := s.now()
	s.runner.Go("quiz.record_answer", func(ctx context.Context) error {
		entry := &models.InteractionLog{
			ID:        uuid.New().String(),
			UserID:    userID,
			WordID:    wordID,
			Type:      models.QuizInteractionType(mode),
			Correct:   correct,
			Timestamp: now,
		}
		if err := s.logs.Insert(ctx, entry); err != nil {
			return fmt.Errorf("failed to log quiz answer: %w", err)
		}

		if err := s.words.RecordAnswer(ctx, wordID, correct, now); err != nil {
			return fmt.Errorf("failed to update word counters: %w", err)
		}

		if _, err := s.recall.RefreshOne(ctx, wordID); err != nil {
			s.logger.Debug("post-answer recall refresh failed",
				zap.String("word_id", wordID), zap.Error(err))
		}
		return nil
	})
}

// completeSession records progress and XP for a finished session. Failures
// here never fail the answer that triggered completion; the user still gets
// their summary.
func (s *quizService) completeSession(ctx context.Context, sessionID, userID string, score, answered int) *models.StreakResult {
	streak, err := s.progress.RecordCompletion(ctx, userID, score, answered)
	if err != nil {
		s.logger.Error("failed to record session completion",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	if err := s.xp.RecordQuizXP(ctx, userID, score, answered); err != nil {
		s.logger.Error("failed to record session xp",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	s.logger.Info("quiz session finished",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.Int("score", score),
		zap.Int("answered", answered))

	return streak
}
