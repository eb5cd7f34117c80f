package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rolodex/internal/identity"
)

// MergeSummary reports what a merge moved. TouchedIdentifierKeys lists the
// cache keys of every identifier either contact held, so the caller can
// invalidate the resolution cache before releasing its locks.
type MergeSummary struct {
	PrimaryID             string
	SecondaryID           string
	IdentifiersMoved      int
	IdentifiersDiscarded  int
	AttributesMoved       int
	CategoriesMoved       int
	AttemptsMoved         int
	TotalMessages         int64
	UnreadMessages        int64
	TouchedIdentifierKeys []string
}

// MergeContacts consolidates secondary into primary inside one transaction:
// identifiers, attributes, categories, and collection attempts are
// re-parented, per-type current attributes are recomputed on the primary,
// message counters are summed, the later last-message timestamp is kept, and
// the secondary contact row is deleted. Any failure rolls the whole
// transaction back; no partial re-parenting is ever observable.
//
// When re-parenting would put two rows for the same (type, value) pair on
// the primary, the row with the better verified/confidence standing is kept
// and the loser discarded, preserving the global uniqueness invariant.
func (s *Store) MergeContacts(ctx context.Context, primaryID, secondaryID string) (*MergeSummary, error) {
	if primaryID == secondaryID {
		return nil, fmt.Errorf("cannot merge contact %s into itself", primaryID)
	}

	ctx = ensureContext(ctx)
	summary := &MergeSummary{PrimaryID: primaryID, SecondaryID: secondaryID}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		primary, err := getContactTx(ctx, tx, primaryID)
		if err != nil {
			return err
		}
		secondary, err := getContactTx(ctx, tx, secondaryID)
		if err != nil {
			return err
		}

		touched, err := identifierKeysTx(ctx, tx, primaryID, secondaryID)
		if err != nil {
			return err
		}
		summary.TouchedIdentifierKeys = touched

		discarded, err := discardDuplicateIdentifiersTx(ctx, tx, primaryID, secondaryID)
		if err != nil {
			return err
		}
		summary.IdentifiersDiscarded = discarded
		if err := s.runMergeHook(1); err != nil {
			return err
		}

		now := time.Now()
		moved, err := reparentTx(ctx, tx,
			`UPDATE contact_identifiers SET contact_id = ?, updated_at = ? WHERE contact_id = ?`,
			primaryID, timestamp(now), secondaryID)
		if err != nil {
			return fmt.Errorf("re-parent identifiers: %w", err)
		}
		summary.IdentifiersMoved = moved
		if err := s.runMergeHook(2); err != nil {
			return err
		}

		touchedTypes, err := attributeTypesTx(ctx, tx, secondaryID)
		if err != nil {
			return err
		}
		moved, err = reparentTx(ctx, tx,
			`UPDATE contact_attributes SET contact_id = ?, updated_at = ? WHERE contact_id = ?`,
			primaryID, timestamp(now), secondaryID)
		if err != nil {
			return fmt.Errorf("re-parent attributes: %w", err)
		}
		summary.AttributesMoved = moved
		for _, attrType := range touchedTypes {
			if err := recomputeCurrentTx(ctx, tx, primaryID, attrType); err != nil {
				return err
			}
		}
		if err := s.runMergeHook(3); err != nil {
			return err
		}

		moved, err = mergeCategoriesTx(ctx, tx, primaryID, secondaryID)
		if err != nil {
			return err
		}
		summary.CategoriesMoved = moved

		moved, err = reparentTx(ctx, tx,
			`UPDATE collection_attempts SET contact_id = ? WHERE contact_id = ?`,
			primaryID, secondaryID)
		if err != nil {
			return fmt.Errorf("re-parent attempts: %w", err)
		}
		summary.AttemptsMoved = moved
		if err := s.runMergeHook(4); err != nil {
			return err
		}

		summary.TotalMessages = primary.TotalMessages + secondary.TotalMessages
		summary.UnreadMessages = primary.UnreadMessages + secondary.UnreadMessages
		lastMessage := laterTime(primary.LastMessageAt, secondary.LastMessageAt)
		if _, err := tx.ExecContext(ctx,
			`UPDATE contacts
             SET total_messages = ?, unread_messages = ?, last_message_at = ?, updated_at = ?
             WHERE contact_id = ?`,
			summary.TotalMessages, summary.UnreadMessages, nullableTime(lastMessage), timestamp(now), primaryID,
		); err != nil {
			return fmt.Errorf("update merged counters: %w", err)
		}
		if err := s.runMergeHook(5); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE contact_id = ?`, secondaryID)
		if err != nil {
			return fmt.Errorf("delete merged contact: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected != 1 {
			return fmt.Errorf("delete merged contact %s: %d rows affected", secondaryID, affected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Store) runMergeHook(step int) error {
	if s.mergeAbortHook == nil {
		return nil
	}
	return s.mergeAbortHook(step)
}

func getContactTx(ctx context.Context, tx *sql.Tx, contactID string) (*Contact, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE contact_id = ?`, contactID)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func identifierKeysTx(ctx context.Context, tx *sql.Tx, contactIDs ...string) ([]string, error) {
	placeholders := makePlaceholders(len(contactIDs))
	args := make([]any, len(contactIDs))
	for i, id := range contactIDs {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT identifier_type, identifier_value FROM contact_identifiers WHERE contact_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("collect identifier keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var typeStr, value string
		if err := rows.Scan(&typeStr, &value); err != nil {
			return nil, err
		}
		keys = append(keys, identity.CacheKey(identity.Type(typeStr), value))
	}
	return keys, rows.Err()
}

// discardDuplicateIdentifiersTx removes the weaker copy wherever both
// contacts hold the same (type, value) pair, keeping verified rows over
// unverified and higher confidence over lower.
func discardDuplicateIdentifiersTx(ctx context.Context, tx *sql.Tx, primaryID, secondaryID string) (int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT sec.identifier_id, sec.confidence_score, sec.verified,
                pri.identifier_id, pri.confidence_score, pri.verified
         FROM contact_identifiers sec
         JOIN contact_identifiers pri
           ON pri.identifier_type = sec.identifier_type
          AND pri.identifier_value = sec.identifier_value
         WHERE sec.contact_id = ? AND pri.contact_id = ?`,
		secondaryID, primaryID,
	)
	if err != nil {
		return 0, fmt.Errorf("find duplicate identifiers: %w", err)
	}
	defer rows.Close()

	type pair struct {
		loserID int64
	}
	var losers []pair
	for rows.Next() {
		var (
			secID, priID     int64
			secConf, priConf float64
			secVer, priVer   int
		)
		if err := rows.Scan(&secID, &secConf, &secVer, &priID, &priConf, &priVer); err != nil {
			return 0, err
		}
		secondaryWins := secVer > priVer || (secVer == priVer && secConf > priConf)
		if secondaryWins {
			losers = append(losers, pair{loserID: priID})
		} else {
			losers = append(losers, pair{loserID: secID})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, p := range losers {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contact_identifiers WHERE identifier_id = ?`, p.loserID); err != nil {
			return 0, fmt.Errorf("discard duplicate identifier: %w", err)
		}
	}
	return len(losers), nil
}

func attributeTypesTx(ctx context.Context, tx *sql.Tx, contactID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT attribute_type FROM contact_attributes WHERE contact_id = ?`, contactID)
	if err != nil {
		return nil, fmt.Errorf("collect attribute types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var attrType string
		if err := rows.Scan(&attrType); err != nil {
			return nil, err
		}
		types = append(types, attrType)
	}
	return types, rows.Err()
}

// mergeCategoriesTx folds the secondary's labels into the primary: shared
// categories keep the higher confidence, the rest are re-parented.
func mergeCategoriesTx(ctx context.Context, tx *sql.Tx, primaryID, secondaryID string) (int, error) {
	if _, err := tx.ExecContext(ctx,
		`UPDATE contact_categories
         SET confidence_score = (
             SELECT MAX(confidence_score) FROM contact_categories sec
             WHERE sec.contact_id = ? AND sec.category = contact_categories.category
         )
         WHERE contact_id = ?
           AND category IN (SELECT category FROM contact_categories WHERE contact_id = ?)
           AND confidence_score < (
             SELECT MAX(confidence_score) FROM contact_categories sec
             WHERE sec.contact_id = ? AND sec.category = contact_categories.category
           )`,
		secondaryID, primaryID, secondaryID, secondaryID,
	); err != nil {
		return 0, fmt.Errorf("raise shared category confidence: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM contact_categories
         WHERE contact_id = ?
           AND category IN (SELECT category FROM contact_categories WHERE contact_id = ?)`,
		secondaryID, primaryID,
	); err != nil {
		return 0, fmt.Errorf("drop shared categories: %w", err)
	}

	return reparentTx(ctx, tx,
		`UPDATE contact_categories SET contact_id = ? WHERE contact_id = ?`,
		primaryID, secondaryID)
}

func reparentTx(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func laterTime(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
