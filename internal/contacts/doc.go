// Package contacts persists canonical contact identities in SQLite and
// enforces the invariants the rest of the system depends on.
//
// The Store owns five tables: contacts, contact_identifiers (globally unique
// on identifier type + value), contact_attributes (an append-only history
// with exactly one row marked current per contact and attribute type),
// contact_categories, and collection_attempts. All confidence columns are
// CHECK-constrained to [0,1] so out-of-range values can never land even if a
// caller skips validation.
//
// Mutations run inside single-operation transactions. Attribute writes apply
// the source-precedence merge policy (user_provided > extracted >
// ai_generated, then confidence, then recency) and recompute the current mark
// transactionally. Contact merges re-parent every dependent row and delete
// the losing contact in one all-or-nothing transaction.
//
// Treat this package as the single source of truth for contact semantics;
// schema changes bump the version in schema.go and users clear the database
// to adopt the new schema.
package contacts
