package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const attemptColumns = "attempt_id, contact_id, chat_guid, attempt_type, status, requested_at, completed_at, details"

// InsertAttempt records the start of an enrichment effort. Attempts always
// begin pending.
func (s *Store) InsertAttempt(ctx context.Context, contactID, chatGUID, attemptType, details string) (int64, error) {
	attemptType = strings.TrimSpace(attemptType)
	if attemptType == "" {
		return 0, errors.New("attempt type is required")
	}

	ctx = ensureContext(ctx)
	var attemptID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := contactExistsTx(ctx, tx, contactID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO collection_attempts (contact_id, chat_guid, attempt_type, status, requested_at, details)
             VALUES (?, ?, ?, ?, ?, ?)`,
			contactID,
			nullableString(chatGUID),
			attemptType,
			string(AttemptPending),
			timestamp(time.Now()),
			nullableString(details),
		)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		attemptID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return attemptID, nil
}

// CompleteAttempt transitions a pending attempt to a terminal status and
// stamps the completion time. Terminal states are frozen: completing an
// already-completed attempt fails with ErrInvalidTransition, an unknown id
// with ErrUnknownAttempt. When details is empty the original payload is kept.
func (s *Store) CompleteAttempt(ctx context.Context, attemptID int64, status AttemptStatus, details string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: attempt %d cannot transition to %q", ErrInvalidTransition, attemptID, string(status))
	}

	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE collection_attempts
             SET status = ?, completed_at = ?, details = COALESCE(?, details)
             WHERE attempt_id = ? AND status = ?`,
			string(status),
			timestamp(time.Now()),
			nullableString(details),
			attemptID,
			string(AttemptPending),
		)
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 1 {
			return nil
		}

		var current string
		err = tx.QueryRowContext(ctx, `SELECT status FROM collection_attempts WHERE attempt_id = ?`, attemptID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("attempt %d: %w", attemptID, ErrUnknownAttempt)
		}
		if err != nil {
			return fmt.Errorf("read attempt status: %w", err)
		}
		return fmt.Errorf("%w: attempt %d is already %s", ErrInvalidTransition, attemptID, current)
	})
}

// GetAttempt fetches an attempt by id.
func (s *Store) GetAttempt(ctx context.Context, attemptID int64) (*CollectionAttempt, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM collection_attempts WHERE attempt_id = ?`, attemptID)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrUnknownAttempt)
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// LatestAttempt returns the most recently requested attempt of a type for a
// contact, so callers can decide whether a retry is warranted. Returns
// ErrNotFound when no attempt of that type exists.
func (s *Store) LatestAttempt(ctx context.Context, contactID, attemptType string) (*CollectionAttempt, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM collection_attempts
         WHERE contact_id = ? AND attempt_type = ?
         ORDER BY attempt_id DESC LIMIT 1`,
		contactID, attemptType,
	)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s/%s: %w", contactID, attemptType, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest attempt: %w", err)
	}
	return attempt, nil
}

// AttemptsForContact returns a contact's full attempt history, newest first.
func (s *Store) AttemptsForContact(ctx context.Context, contactID string) ([]*CollectionAttempt, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attemptColumns+` FROM collection_attempts WHERE contact_id = ? ORDER BY attempt_id DESC`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("attempts for contact: %w", err)
	}
	defer rows.Close()

	var attempts []*CollectionAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (*CollectionAttempt, error) {
	var (
		id           int64
		contactID    string
		chatGUID     sql.NullString
		attemptType  string
		status       string
		requestedRaw string
		completedRaw sql.NullString
		details      sql.NullString
	)
	if err := scanner.Scan(&id, &contactID, &chatGUID, &attemptType, &status, &requestedRaw, &completedRaw, &details); err != nil {
		return nil, err
	}

	attempt := &CollectionAttempt{
		ID:        id,
		ContactID: contactID,
		ChatGUID:  chatGUID.String,
		Type:      attemptType,
		Status:    AttemptStatus(status),
		Details:   details.String,
	}
	if requested, err := parseTimeString(requestedRaw); err == nil {
		attempt.RequestedAt = requested
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			attempt.CompletedAt = &completed
		}
	}
	return attempt, nil
}
