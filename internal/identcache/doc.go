// Package identcache provides the in-process resolution cache mapping
// normalized identifiers to contact ids.
//
// The cache is advisory: a miss always falls through to the contact store, so
// entries can be dropped at any time without affecting correctness. Writers
// only populate it after a storage transaction commits, and merges invalidate
// every identifier value they touch before releasing their locks, so readers
// never observe a stale contact id for a re-parented identifier once the
// merge is visible.
//
// Capacity is bounded; when full, the entry closest to expiry is evicted.
// The cache is an explicit, injectable dependency rather than a process
// global so tests can substitute a deterministic instance.
package identcache
