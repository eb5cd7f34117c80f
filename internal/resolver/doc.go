// Package resolver maps raw identifiers to canonical contacts. It
// normalizes the input, consults the resolution cache, and falls through to
// the contact store, creating a contact on first observation. Resolution is
// idempotent: concurrent callers racing on the same identifier converge on
// one contact because the storage uniqueness constraint arbitrates and the
// loser re-reads the winner's row.
package resolver
