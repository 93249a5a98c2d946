package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wordrecall/backend/internal/models"
	"github.com/wordrecall/backend/internal/repositories"
	"go.uber.org/zap"
)

// mockWordsRepo is a mock implementation of WordsRepository
type mockWordsRepo struct {
	words []models.Word
	word  *models.Word
	err   error

	created      *models.Word
	updated      *models.Word
	deletedID    string
	deletedOwner string
}

func (m *mockWordsRepo) GetByOwner(_ context.Context, _ string) ([]models.Word, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.words, nil
}

func (m *mockWordsRepo) GetByID(_ context.Context, _ string, _ string) (*models.Word, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.word == nil {
		return nil, repositories.ErrNotFound
	}
	return m.word, nil
}

func (m *mockWordsRepo) SearchByTerm(_ context.Context, _ string, _ string, _ int) ([]models.Word, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.words, nil
}

func (m *mockWordsRepo) Create(_ context.Context, word *models.Word) error {
	if m.err != nil {
		return m.err
	}
	m.created = word
	return nil
}

func (m *mockWordsRepo) Update(_ context.Context, word *models.Word) error {
	if m.err != nil {
		return m.err
	}
	m.updated = word
	return nil
}

func (m *mockWordsRepo) Delete(_ context.Context, id string, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	return nil
}

func (m *mockWordsRepo) DeleteByOwner(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedOwner = userID
	return nil
}

// mockErasure covers the erasure-only repositories
type mockErasure struct {
	err     error
	deleted []string
}

func (m *mockErasure) DeleteByUser(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, "logs:"+userID)
	return nil
}

func (m *mockErasure) Delete(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, "row:"+userID)
	return nil
}

func newWordService(words *mockWordsRepo) (*wordService, *mockErasure) {
	erasure := &mockErasure{}
	return NewWordService(words, erasure, erasure, erasure, zap.NewNop()), erasure
}

func TestWordService_CreateWord(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.CreateWordRequest
		expectedError error
	}{
		{
			name: "valid word",
			req:  &models.CreateWordRequest{Term: "serendipity", ShortMeaning: "lucky find"},
		},
		{
			name: "term is trimmed",
			req:  &models.CreateWordRequest{Term: "  ephemeral  "},
		},
		{
			name:          "empty term",
			req:           &models.CreateWordRequest{Term: "   "},
			expectedError: ErrInvalidTerm,
		},
		{
			name:          "term too long",
			req:           &models.CreateWordRequest{Term: strings.Repeat("x", 200)},
			expectedError: ErrInvalidTerm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockWordsRepo{}
			svc, _ := newWordService(repo)

			word, err := svc.CreateWord(context.Background(), "user-1", tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, repo.created)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, word.ID)
			assert.Equal(t, "user-1", word.UserID)
			assert.Equal(t, strings.TrimSpace(tt.req.Term), word.Term)
			assert.False(t, word.Memorized)
			assert.Nil(t, word.PRecall)
			assert.NotNil(t, repo.created)
		})
	}
}

func TestWordService_UpdateWord(t *testing.T) {
	existing := func() *models.Word {
		w := testWord("w1", false, time.Now().AddDate(0, 0, -3))
		w.Note = "old note"
		return &w
	}

	t.Run("only provided fields change", func(t *testing.T) {
		repo := &mockWordsRepo{word: existing()}
		svc, _ := newWordService(repo)

		memorized := true
		word, err := svc.UpdateWord(context.Background(), "w1", "user-1", &models.UpdateWordRequest{
			Memorized: &memorized,
		})

		assert.NoError(t, err)
		assert.True(t, word.Memorized)
		assert.Equal(t, "old note", word.Note)
		assert.Equal(t, "term-w1", word.Term)
		assert.NotNil(t, repo.updated)
	})

	t.Run("unknown word", func(t *testing.T) {
		repo := &mockWordsRepo{}
		svc, _ := newWordService(repo)

		_, err := svc.UpdateWord(context.Background(), "w1", "user-1", &models.UpdateWordRequest{})

		assert.ErrorIs(t, err, ErrWordNotFound)
	})

	t.Run("empty replacement term is rejected", func(t *testing.T) {
		repo := &mockWordsRepo{word: existing()}
		svc, _ := newWordService(repo)

		empty := "  "
		_, err := svc.UpdateWord(context.Background(), "w1", "user-1", &models.UpdateWordRequest{Term: &empty})

		assert.ErrorIs(t, err, ErrInvalidTerm)
		assert.Nil(t, repo.updated)
	})
}

func TestWordService_SearchWords(t *testing.T) {
	t.Run("blank query returns empty list without a lookup", func(t *testing.T) {
		repo := &mockWordsRepo{err: errors.New("must not be called")}
		svc, _ := newWordService(repo)

		words, err := svc.SearchWords(context.Background(), "user-1", "   ")

		assert.NoError(t, err)
		assert.Empty(t, words)
	})

	t.Run("matches are returned", func(t *testing.T) {
		repo := &mockWordsRepo{words: []models.Word{testWord("w1", false, time.Now())}}
		svc, _ := newWordService(repo)

		words, err := svc.SearchWords(context.Background(), "user-1", "ter")

		assert.NoError(t, err)
		assert.Len(t, words, 1)
	})
}

func TestWordService_EraseUser(t *testing.T) {
	t.Run("removes words, history, progress and stats", func(t *testing.T) {
		repo := &mockWordsRepo{}
		svc, erasure := newWordService(repo)

		err := svc.EraseUser(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", repo.deletedOwner)
		assert.Equal(t, []string{"logs:user-1", "row:user-1", "row:user-1"}, erasure.deleted)
	})

	t.Run("first failure aborts", func(t *testing.T) {
		repo := &mockWordsRepo{err: errors.New("database error")}
		svc, erasure := newWordService(repo)

		err := svc.EraseUser(context.Background(), "user-1")

		assert.Error(t, err)
		assert.Empty(t, erasure.deleted)
	})

	t.Run("missing progress row is not an error", func(t *testing.T) {
		repo := &mockWordsRepo{}
		erasure := &mockErasure{}
		missing := &mockErasure{err: repositories.ErrNotFound}
		svc := NewWordService(repo, erasure, missing, missing, zap.NewNop())

		err := svc.EraseUser(context.Background(), "user-1")

		assert.NoError(t, err)
	})
}
