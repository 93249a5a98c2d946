package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

const wordColumns = `id, user_id, term, phonetic, audio, short_meaning, meanings, memorized,
		note, p_recall, seen_count, incorrect_count, last_result, last_seen_at, created_at, updated_at`

type wordsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWordsRepository creates a new words repository
func NewWordsRepository(db *sql.DB, logger *zap.Logger) *wordsRepository {
	return &wordsRepository{
		db:     db,
		logger: logger,
	}
}

// GetByOwner retrieves all words belonging to a user, oldest first.
func (r *wordsRepository) GetByOwner(ctx context.Context, userID string) ([]models.Word, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM words
		WHERE user_id = ?
		ORDER BY created_at
	`, wordColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query words by owner", zap.Error(err))
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// GetByID retrieves a word by id, scoped to its owner.
func (r *wordsRepository) GetByID(ctx context.Context, id string, userID string) (*models.Word, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM words
		WHERE id = ? AND user_id = ?
	`, wordColumns)

	row := r.db.QueryRowContext(ctx, query, id, userID)
	word, err := scanWord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to query word by id", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to query word: %w", err)
	}

	return word, nil
}

// GetByIDs retrieves a set of the user's words by id. Missing ids are
// silently skipped.
func (r *wordsRepository) GetByIDs(ctx context.Context, userID string, ids []string) ([]models.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM words
		WHERE user_id = ? AND id IN (%s)
	`, wordColumns, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query words by ids", zap.Error(err))
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// SearchByTerm performs an ordered prefix scan over the user's terms.
func (r *wordsRepository) SearchByTerm(ctx context.Context, userID string, prefix string, limit int) ([]models.Word, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM words
		WHERE user_id = ? AND term LIKE CONCAT(?, '%%')
		ORDER BY term
		LIMIT ?
	`, wordColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, prefix, limit)
	if err != nil {
		r.logger.Error("failed to search words", zap.Error(err))
		return nil, fmt.Errorf("failed to search words: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// ListMissingRecall returns words across all users that have no cached
// prediction yet. Used by the nightly warm-up job.
func (r *wordsRepository) ListMissingRecall(ctx context.Context, limit int) ([]models.Word, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM words
		WHERE p_recall IS NULL
		ORDER BY created_at
		LIMIT ?
	`, wordColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to query words missing recall", zap.Error(err))
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// Create inserts a new word.
func (r *wordsRepository) Create(ctx context.Context, word *models.Word) error {
	query := `
		INSERT INTO words (id, user_id, term, phonetic, audio, short_meaning, meanings, memorized,
			note, p_recall, seen_count, incorrect_count, last_result, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var pRecall any
	if word.PRecall != nil {
		pRecall = *word.PRecall
	}

	_, err := r.db.ExecContext(ctx, query,
		word.ID, word.UserID, word.Term, word.Phonetic, word.Audio, word.ShortMeaning,
		word.Meanings, word.Memorized, word.Note, pRecall,
		word.SeenCount, word.IncorrectCount, word.LastResult,
		word.CreatedAt, word.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert word", zap.Error(err))
		return fmt.Errorf("failed to insert word: %w", err)
	}

	return nil
}

// Update overwrites the editable fields of a word.
func (r *wordsRepository) Update(ctx context.Context, word *models.Word) error {
	query := `
		UPDATE words
		SET term = ?, phonetic = ?, audio = ?, short_meaning = ?, meanings = ?,
			memorized = ?, note = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		word.Term, word.Phonetic, word.Audio, word.ShortMeaning, word.Meanings,
		word.Memorized, word.Note, word.UpdatedAt,
		word.ID, word.UserID,
	)
	if err != nil {
		r.logger.Error("failed to update word", zap.Error(err), zap.String("id", word.ID))
		return fmt.Errorf("failed to update word: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateRecall persists a new cached recall probability for a word.
func (r *wordsRepository) UpdateRecall(ctx context.Context, wordID string, pRecall float64) error {
	query := `UPDATE words SET p_recall = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, pRecall, time.Now().UTC(), wordID)
	if err != nil {
		r.logger.Error("failed to update word recall", zap.Error(err), zap.String("id", wordID))
		return fmt.Errorf("failed to update word recall: %w", err)
	}

	return nil
}

// RecordAnswer applies the optimistic post-answer counter update: seen count
// goes up by one, incorrect count by one on a miss. Atomic increments so
// concurrent sessions do not lose updates.
func (r *wordsRepository) RecordAnswer(ctx context.Context, wordID string, correct bool, now time.Time) error {
	incorrectDelta := 0
	lastResult := "correct"
	if !correct {
		incorrectDelta = 1
		lastResult = "wrong"
	}

	query := `
		UPDATE words
		SET seen_count = seen_count + 1,
			incorrect_count = incorrect_count + ?,
			last_result = ?,
			last_seen_at = ?,
			updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, incorrectDelta, lastResult, now, now, wordID)
	if err != nil {
		r.logger.Error("failed to record answer", zap.Error(err), zap.String("id", wordID))
		return fmt.Errorf("failed to record answer: %w", err)
	}

	return nil
}

// Delete removes one of the user's words.
func (r *wordsRepository) Delete(ctx context.Context, id string, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		r.logger.Error("failed to delete word", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete word: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteByOwner removes all of a user's words (account erasure).
func (r *wordsRepository) DeleteByOwner(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE user_id = ?`, userID)
	if err != nil {
		r.logger.Error("failed to delete words by owner", zap.Error(err))
		return fmt.Errorf("failed to delete words: %w", err)
	}

	return nil
}

func scanWords(rows *sql.Rows) ([]models.Word, error) {
	var words []models.Word
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, *word)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return words, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (*models.Word, error) {
	var word models.Word
	var pRecall sql.NullFloat64
	var lastSeenAt sql.NullTime

	err := row.Scan(
		&word.ID, &word.UserID, &word.Term, &word.Phonetic, &word.Audio, &word.ShortMeaning,
		&word.Meanings, &word.Memorized, &word.Note, &pRecall,
		&word.SeenCount, &word.IncorrectCount, &word.LastResult, &lastSeenAt,
		&word.CreatedAt, &word.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pRecall.Valid {
		v := pRecall.Float64
		word.PRecall = &v
	}
	if lastSeenAt.Valid {
		t := lastSeenAt.Time
		word.LastSeenAt = &t
	}

	return &word, nil
}
