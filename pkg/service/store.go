package service

import (
	"sync"
	"time"

	"spendwatch/budgetgate/pkg/budget"
)

// storeShards is the number of independent shards in the store. More
// shards spread unrelated projects across more locks.
const storeShards = 64

// key identifies one tracked project within one budgeting config.
type key struct {
	config  string
	project uint64
}

// hash is FNV-1a over the config name and the project id bytes.
func (k key) hash() uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(k.config); i++ {
		h ^= uint64(k.config[i])
		h *= prime64
	}
	for i := 0; i < 8; i++ {
		h ^= (k.project >> (8 * i)) & 0xff
		h *= prime64
	}
	return h
}

// entry is one independently lockable store slot. The mutex serializes
// the whole record/check sequence for its key; evicted marks a slot the
// sweeper has removed from the map so a racing lookup knows to retry.
type entry struct {
	mu      sync.Mutex
	tracker *budget.Tracker
	touched time.Time
	evicted bool
}

// shard is one slice of the store's mapping with its own lock.
type shard struct {
	mu      sync.RWMutex
	entries map[key]*entry
}

// store is the concurrent mapping from key to tracker entry. The shard
// locks only guard the mapping itself; all tracker work happens under
// the entry lock, so creation and eviction never block in-flight
// operations on other keys.
type store struct {
	shards [storeShards]shard
}

func newStore() *store {
	s := &store{}
	for i := range s.shards {
		s.shards[i].entries = make(map[key]*entry)
	}
	return s
}

func (s *store) shardFor(k key) *shard {
	return &s.shards[k.hash()%storeShards]
}

// getOrCreate returns the live entry for k, inserting a fresh tracker
// if none exists. Concurrent creators race on the shard write lock and
// exactly one insert wins.
func (s *store) getOrCreate(k key, cfg budget.Config) *entry {
	sh := s.shardFor(k)

	sh.mu.RLock()
	e := sh.entries[k]
	sh.mu.RUnlock()
	if e != nil {
		return e
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e = sh.entries[k]; e == nil {
		e = &entry{tracker: budget.NewTracker(cfg)}
		sh.entries[k] = e
	}
	return e
}

// withTracker runs fn on the tracker for k as one critical section.
// If the entry is evicted between lookup and lock acquisition, the
// lookup is retried; fn always runs on an entry that is live in the
// mapping at the time it executes.
func (s *store) withTracker(k key, cfg budget.Config, at time.Time, fn func(*budget.Tracker) budget.Decision) budget.Decision {
	for {
		e := s.getOrCreate(k, cfg)
		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}
		d := fn(e.tracker)
		if at.After(e.touched) {
			e.touched = at
		}
		e.mu.Unlock()
		return d
	}
}

// evictStale removes entries whose tracker is stale at now and which
// have not been touched for at least idle. The two-phase scan keeps the
// shard write lock short: candidates are found under the read lock and
// re-checked under the write lock before removal.
func (s *store) evictStale(now time.Time, idle time.Duration) int {
	var evicted int
	for i := range s.shards {
		sh := &s.shards[i]

		sh.mu.RLock()
		var candidates []key
		for k, e := range sh.entries {
			e.mu.Lock()
			stale := e.tracker.StaleAt(now) && now.Sub(e.touched) >= idle
			e.mu.Unlock()
			if stale {
				candidates = append(candidates, k)
			}
		}
		sh.mu.RUnlock()

		if len(candidates) == 0 {
			continue
		}

		sh.mu.Lock()
		for _, k := range candidates {
			e := sh.entries[k]
			if e == nil {
				continue
			}
			e.mu.Lock()
			if e.tracker.StaleAt(now) && now.Sub(e.touched) >= idle {
				e.evicted = true
				delete(sh.entries, k)
				evicted++
			}
			e.mu.Unlock()
		}
		sh.mu.Unlock()
	}
	return evicted
}

// len counts the live entries across all shards.
func (s *store) len() int {
	var n int
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}
