// Package dedupe finds likely duplicate contacts and merges them. Scoring is
// a pure weighted sum over extracted features (identifier overlap, name
// similarity, shared chat history) so it can be tuned and tested without a
// database. Merging serializes per contact through an in-process lock
// registry with canonical lock ordering, executes the store's single-
// transaction merge, and invalidates the resolution cache for every touched
// identifier before the locks release.
package dedupe
