package dedupe

import (
	"sort"
	"sync"
)

// lockRegistry hands out one mutex per contact id. Merges lock both
// participants in sorted id order so two concurrent merges over overlapping
// contacts can never deadlock; acquisition is non-blocking and a busy lock
// surfaces as ErrMergeConflict to the caller.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sync.Mutex)}
}

func (r *lockRegistry) lockFor(contactID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.locks[contactID]; ok {
		return m
	}
	m := &sync.Mutex{}
	r.locks[contactID] = m
	return m
}

// acquire takes the locks for all ids in canonical order. On success it
// returns a release function; on contention it backs out whatever it took
// and reports failure.
func (r *lockRegistry) acquire(ids ...string) (func(), bool) {
	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	taken := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		m := r.lockFor(id)
		if !m.TryLock() {
			for i := len(taken) - 1; i >= 0; i-- {
				taken[i].Unlock()
			}
			return nil, false
		}
		taken = append(taken, m)
	}
	return func() {
		for i := len(taken) - 1; i >= 0; i-- {
			taken[i].Unlock()
		}
	}, true
}
