package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/repositories"
	"go.uber.org/zap"
)

// WordsRepository is the interface that wraps the full word storage surface
// used by the word service.
type WordsRepository interface {
	GetByOwner(ctx context.Context, userID string) ([]models.Word, error)
	GetByID(ctx context.Context, id string, userID string) (*models.Word, error)
	SearchByTerm(ctx context.Context, userID string, prefix string, limit int) ([]models.Word, error)
	Create(ctx context.Context, word *models.Word) error
	Update(ctx context.Context, word *models.Word) error
	Delete(ctx context.Context, id string, userID string) error
	DeleteByOwner(ctx context.Context, userID string) error
}

// ErasureLogRepository deletes a user's interaction history on account
// erasure.
type ErasureLogRepository interface {
	DeleteByUser(ctx context.Context, userID string) error
}

// ErasureProgressRepository deletes a user's progress row on account erasure.
type ErasureProgressRepository interface {
	Delete(ctx context.Context, userID string) error
}

// ErasureStatsRepository deletes a user's XP row on account erasure.
type ErasureStatsRepository interface {
	Delete(ctx context.Context, userID string) error
}

var (
	// ErrWordNotFound is returned when a word does not exist or belongs to
	// another user.
	ErrWordNotFound = errors.New("word not found")
	// ErrInvalidTerm is returned when a term is empty or too long.
	ErrInvalidTerm = errors.New("term must be between 1 and 128 characters")
)

const (
	maxTermLength      = 128
	searchResultsLimit = 20
)

type wordService struct {
	words    WordsRepository
	logs     ErasureLogRepository
	progress ErasureProgressRepository
	stats    ErasureStatsRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewWordService creates a new word service.
func NewWordService(
	words WordsRepository,
	logs ErasureLogRepository,
	progress ErasureProgressRepository,
	stats ErasureStatsRepository,
	logger *zap.Logger,
) *wordService {
	return &wordService{
		words:    words,
		logs:     logs,
		progress: progress,
		stats:    stats,
		logger:   logger,
		now:      time.Now,
	}
}

// ListWords returns all of the user's words in creation order.
func (s *wordService) ListWords(ctx context.Context, userID string) ([]models.Word, error) {
	words, err := s.words.GetByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return words, nil
}

// GetWord returns a single word by id, scoped to its owner.
func (s *wordService) GetWord(ctx context.Context, id, userID string) (*models.Word, error) {
	word, err := s.words.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return word, nil
}

// SearchWords returns the user's words whose term starts with the given
// prefix, ordered alphabetically.
func (s *wordService) SearchWords(ctx context.Context, userID, prefix string) ([]models.Word, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []models.Word{}, nil
	}
	words, err := s.words.SearchByTerm(ctx, userID, prefix, searchResultsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search words: %w", err)
	}
	return words, nil
}

// CreateWord adds a new word to the user's vocabulary.
func (s *wordService) CreateWord(ctx context.Context, userID string, req *models.CreateWordRequest) (*models.Word, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" || len(term) > maxTermLength {
		return nil, ErrInvalidTerm
	}

	now := s.now()
	word := &models.Word{
		ID:           uuid.New().String(),
		UserID:       userID,
		Term:         term,
		Phonetic:     req.Phonetic,
		Audio:        req.Audio,
		ShortMeaning: req.ShortMeaning,
		Meanings:     req.Meanings,
		Note:         req.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.words.Create(ctx, word); err != nil {
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	s.logger.Info("word created",
		zap.String("word_id", word.ID),
		zap.String("user_id", userID))

	return word, nil
}

// UpdateWord applies the non-nil fields of the request to an existing word.
func (s *wordService) UpdateWord(ctx context.Context, id, userID string, req *models.UpdateWordRequest) (*models.Word, error) {
	word, err := s.GetWord(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Term != nil {
		term := strings.TrimSpace(*req.Term)
		if term == "" || len(term) > maxTermLength {
			return nil, ErrInvalidTerm
		}
		word.Term = term
	}
	if req.Phonetic != nil {
		word.Phonetic = *req.Phonetic
	}
	if req.Audio != nil {
		word.Audio = *req.Audio
	}
	if req.ShortMeaning != nil {
		word.ShortMeaning = *req.ShortMeaning
	}
	if req.Meanings != nil {
		word.Meanings = *req.Meanings
	}
	if req.Note != nil {
		word.Note = *req.Note
	}
	if req.Memorized != nil {
		word.Memorized = *req.Memorized
	}
	word.UpdatedAt = s.now()

	if err := s.words.Update(ctx, word); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to update word: %w", err)
	}

	return word, nil
}

// DeleteWord removes a word. The interaction log keeps its history entries;
// they stop affecting anything once the word is gone.
func (s *wordService) DeleteWord(ctx context.Context, id, userID string) error {
	if err := s.words.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrWordNotFound
		}
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// EraseUser removes every record the user owns: words, interaction history,
// progress and XP. Best effort is not enough here, so the first failure
// aborts and returns the error for retry.
func (s *wordService) EraseUser(ctx context.Context, userID string) error {
	if err := s.words.DeleteByOwner(ctx, userID); err != nil {
		return fmt.Errorf("failed to erase words: %w", err)
	}
	if err := s.logs.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to erase interaction log: %w", err)
	}
	if err := s.progress.Delete(ctx, userID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to erase progress: %w", err)
	}
	if err := s.stats.Delete(ctx, userID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to erase stats: %w", err)
	}

	s.logger.Info("user data erased", zap.String("user_id", userID))
	return nil
}
