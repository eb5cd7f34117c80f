// Command rolodex is the CLI for the contact identity store: it resolves
// identifiers to canonical contacts, records attributes and categories,
// surfaces and executes duplicate merges, tracks collection attempts, and
// runs the dedupe sweep.
package main
