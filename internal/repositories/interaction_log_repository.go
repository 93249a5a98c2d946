package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wordrecall/backend/internal/models"
	"go.uber.org/zap"
)

type interactionLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInteractionLogRepository creates a new interaction log repository
func NewInteractionLogRepository(db *sql.DB, logger *zap.Logger) *interactionLogRepository {
	return &interactionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends one event to the log. Entries are immutable once written.
func (r *interactionLogRepository) Insert(ctx context.Context, log *models.InteractionLog) error {
	extra, err := marshalExtra(log.Extra)
	if err != nil {
		return err
	}

	var pRecallAfter any
	if log.PRecallAfter != nil {
		pRecallAfter = *log.PRecallAfter
	}

	query := `
		INSERT INTO interaction_log (id, user_id, word_id, type, correct, timestamp, p_recall_after, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.WordID, string(log.Type), log.Correct, log.Timestamp, pRecallAfter, extra,
	)
	if err != nil {
		r.logger.Error("failed to insert interaction log", zap.Error(err))
		return fmt.Errorf("failed to insert interaction log: %w", err)
	}

	return nil
}

// InsertBatch appends a batch of events in one transaction.
func (r *interactionLogRepository) InsertBatch(ctx context.Context, logs []models.InteractionLog) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO interaction_log (id, user_id, word_id, type, correct, timestamp, p_recall_after, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i := range logs {
		log := &logs[i]
		extra, err := marshalExtra(log.Extra)
		if err != nil {
			return err
		}

		var pRecallAfter any
		if log.PRecallAfter != nil {
			pRecallAfter = *log.PRecallAfter
		}

		if _, err := tx.ExecContext(ctx, query,
			log.ID, log.UserID, log.WordID, string(log.Type), log.Correct, log.Timestamp, pRecallAfter, extra,
		); err != nil {
			r.logger.Error("failed to insert interaction log batch", zap.Error(err))
			return fmt.Errorf("failed to insert interaction log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetQuizByWord returns a user's quiz events for one word, oldest first.
func (r *interactionLogRepository) GetQuizByWord(ctx context.Context, userID string, wordID string) ([]models.InteractionLog, error) {
	query := `
		SELECT id, user_id, word_id, type, correct, timestamp, p_recall_after, extra
		FROM interaction_log
		WHERE user_id = ? AND word_id = ? AND type IN ('quiz_flashcard', 'quiz_mcq', 'quiz_fill')
		ORDER BY timestamp
	`

	rows, err := r.db.QueryContext(ctx, query, userID, wordID)
	if err != nil {
		r.logger.Error("failed to query quiz logs by word", zap.Error(err))
		return nil, fmt.Errorf("failed to query interaction logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// GetRecentQuiz returns a user's most recent quiz events, newest first,
// bounded by limit.
func (r *interactionLogRepository) GetRecentQuiz(ctx context.Context, userID string, limit int) ([]models.InteractionLog, error) {
	query := `
		SELECT id, user_id, word_id, type, correct, timestamp, p_recall_after, extra
		FROM interaction_log
		WHERE user_id = ? AND type IN ('quiz_flashcard', 'quiz_mcq', 'quiz_fill')
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("failed to query recent quiz logs", zap.Error(err))
		return nil, fmt.Errorf("failed to query interaction logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// DeleteByUser removes all of a user's log entries (account erasure only).
func (r *interactionLogRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM interaction_log WHERE user_id = ?`, userID)
	if err != nil {
		r.logger.Error("failed to delete interaction logs", zap.Error(err))
		return fmt.Errorf("failed to delete interaction logs: %w", err)
	}

	return nil
}

func marshalExtra(extra map[string]any) (any, error) {
	if extra == nil {
		return nil, nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extra payload: %w", err)
	}
	return string(b), nil
}

func scanLogs(rows *sql.Rows) ([]models.InteractionLog, error) {
	var logs []models.InteractionLog
	for rows.Next() {
		var log models.InteractionLog
		var logType string
		var pRecallAfter sql.NullFloat64
		var extra sql.NullString

		if err := rows.Scan(
			&log.ID, &log.UserID, &log.WordID, &logType, &log.Correct, &log.Timestamp, &pRecallAfter, &extra,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction log: %w", err)
		}

		log.Type = models.InteractionType(logType)
		if pRecallAfter.Valid {
			v := pRecallAfter.Float64
			log.PRecallAfter = &v
		}
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &log.Extra); err != nil {
				return nil, fmt.Errorf("failed to unmarshal extra payload: %w", err)
			}
		}

		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}
