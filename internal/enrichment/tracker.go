package enrichment

import (
	"context"
	"log/slog"

	"rolodex/internal/contacts"
	"rolodex/internal/logging"
)

// Tracker is the state machine for collection attempts. Every attempt starts
// pending and ends in exactly one terminal transition; terminal attempts are
// frozen and retries create a new attempt.
type Tracker struct {
	store  *contacts.Store
	logger *slog.Logger
}

// NewTracker builds a tracker over the store.
func NewTracker(store *contacts.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logging.NewComponentLogger(logger, "enrichment"),
	}
}

// StartAttempt opens a pending attempt and returns its id.
func (t *Tracker) StartAttempt(ctx context.Context, contactID, chatGUID, attemptType, details string) (int64, error) {
	attemptID, err := t.store.InsertAttempt(ctx, contactID, chatGUID, attemptType, details)
	if err != nil {
		return 0, err
	}
	t.logger.Info("collection attempt started",
		logging.Int64(logging.FieldAttemptID, attemptID),
		logging.String(logging.FieldContactID, contactID),
		logging.String(logging.FieldAttributeType, attemptType),
		logging.String(logging.FieldChatGUID, chatGUID))
	return attemptID, nil
}

// CompleteAttempt moves a pending attempt to successful or failed. It
// returns contacts.ErrUnknownAttempt for a missing id and
// contacts.ErrInvalidTransition when the attempt is already terminal or the
// target status is not terminal.
func (t *Tracker) CompleteAttempt(ctx context.Context, attemptID int64, status contacts.AttemptStatus, details string) error {
	if err := t.store.CompleteAttempt(ctx, attemptID, status, details); err != nil {
		return err
	}
	t.logger.Info("collection attempt completed",
		logging.Int64(logging.FieldAttemptID, attemptID),
		logging.String("status", string(status)))
	return nil
}

// LatestAttempt returns the most recent attempt of a type for a contact, so
// callers can decide whether another ask is warranted.
func (t *Tracker) LatestAttempt(ctx context.Context, contactID, attemptType string) (*contacts.CollectionAttempt, error) {
	return t.store.LatestAttempt(ctx, contactID, attemptType)
}

// Attempts returns the full attempt history for a contact, newest first.
func (t *Tracker) Attempts(ctx context.Context, contactID string) ([]*contacts.CollectionAttempt, error) {
	return t.store.AttemptsForContact(ctx, contactID)
}
