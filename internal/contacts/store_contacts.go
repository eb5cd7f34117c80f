package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const contactColumns = "contact_id, created_at, updated_at, last_message_at, total_messages, unread_messages"

// GetContact fetches a contact by id.
func (s *Store) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE contact_id = ?`, contactID)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// ListContacts returns all contacts ordered by creation time.
func (s *Store) ListContacts(ctx context.Context) ([]*Contact, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at, contact_id`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// SearchFilter narrows SearchContacts results. Zero values mean "no filter".
type SearchFilter struct {
	// Query matches case-insensitively against current name attributes and
	// identifier values.
	Query string
	// HasUnread filters to contacts with (true) or without (false) unread
	// messages when set.
	HasUnread *bool
	// LastMessageAfter keeps only contacts whose last message is strictly
	// later.
	LastMessageAfter *time.Time
}

// SearchContacts returns contacts matching the filter, ordered by creation time.
func (s *Store) SearchContacts(ctx context.Context, filter SearchFilter) ([]*Contact, error) {
	ctx = ensureContext(ctx)

	query := `SELECT DISTINCT c.contact_id, c.created_at, c.updated_at, c.last_message_at, c.total_messages, c.unread_messages
        FROM contacts c
        LEFT JOIN contact_identifiers i ON i.contact_id = c.contact_id
        LEFT JOIN contact_attributes a ON a.contact_id = c.contact_id AND a.is_current = 1`
	var clauses []string
	var args []any

	if trimmed := strings.TrimSpace(filter.Query); trimmed != "" {
		needle := "%" + strings.ToLower(trimmed) + "%"
		clauses = append(clauses, `(LOWER(i.identifier_value) LIKE ? OR LOWER(a.attribute_value) LIKE ?)`)
		args = append(args, needle, needle)
	}
	if filter.HasUnread != nil {
		if *filter.HasUnread {
			clauses = append(clauses, `c.unread_messages > 0`)
		} else {
			clauses = append(clauses, `c.unread_messages = 0`)
		}
	}
	if filter.LastMessageAfter != nil {
		clauses = append(clauses, `c.last_message_at IS NOT NULL AND c.last_message_at > ?`)
		args = append(args, timestamp(*filter.LastMessageAfter))
	}

	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY c.created_at, c.contact_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// RecordMessage applies message counter deltas and advances the last-message
// timestamp for a contact. Deltas may be negative (marking read) but counters
// never drop below zero.
func (s *Store) RecordMessage(ctx context.Context, contactID string, totalDelta, unreadDelta int64, lastMessageAt *time.Time) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := timestamp(time.Now())
		res, err := tx.ExecContext(ctx,
			`UPDATE contacts
             SET total_messages = MAX(0, total_messages + ?),
                 unread_messages = MAX(0, unread_messages + ?),
                 last_message_at = COALESCE(?, last_message_at),
                 updated_at = ?
             WHERE contact_id = ?`,
			totalDelta,
			unreadDelta,
			nullableTime(lastMessageAt),
			now,
			contactID,
		)
		if err != nil {
			return fmt.Errorf("record message: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return nil
	})
}

// CountContacts returns the number of contact rows.
func (s *Store) CountContacts(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return count, nil
}

func insertContactTx(ctx context.Context, tx *sql.Tx, contactID string, now time.Time) error {
	ts := timestamp(now)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO contacts (contact_id, created_at, updated_at) VALUES (?, ?, ?)`,
		contactID, ts, ts,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contact %s: %w", contactID, ErrDuplicateIdentifier)
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func touchContactTx(ctx context.Context, tx *sql.Tx, contactID string, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE contacts SET updated_at = ? WHERE contact_id = ?`,
		timestamp(now), contactID,
	); err != nil {
		return fmt.Errorf("touch contact: %w", err)
	}
	return nil
}

func contactExistsTx(ctx context.Context, tx *sql.Tx, contactID string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM contacts WHERE contact_id = ?`, contactID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check contact: %w", err)
	}
	return true, nil
}

func scanContact(scanner interface{ Scan(dest ...any) error }) (*Contact, error) {
	var (
		id             string
		createdRaw     string
		updatedRaw     string
		lastMessageRaw sql.NullString
		totalMessages  int64
		unreadMessages int64
	)
	if err := scanner.Scan(&id, &createdRaw, &updatedRaw, &lastMessageRaw, &totalMessages, &unreadMessages); err != nil {
		return nil, err
	}

	contact := &Contact{
		ID:             id,
		TotalMessages:  totalMessages,
		UnreadMessages: unreadMessages,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		contact.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		contact.UpdatedAt = updated
	}
	if lastMessageRaw.Valid {
		if last, err := parseTimeString(lastMessageRaw.String); err == nil {
			contact.LastMessageAt = &last
		}
	}
	return contact, nil
}
