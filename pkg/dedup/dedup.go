package dedup

import (
	"sync"
	"time"
)

// Deduper remembers recently seen ids for a TTL and rejects repeats. The
// ingest service keys it on upload payloads, since GPRS retries and QoS 1
// redeliveries carry identical bytes.
type Deduper struct {
	mu        sync.Mutex
	ttl       time.Duration
	max       int
	seen      map[string]time.Time
	lastSweep time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max)}
}

// ShouldProcess reports whether id is new (or expired) and records it.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)

	if len(d.seen) > d.max || now.Sub(d.lastSweep) > d.ttl {
		d.sweep(now)
	}
	return true
}

// Len reports the number of tracked ids, expired entries included until the
// next sweep.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// sweep drops expired entries; called with the lock held.
func (d *Deduper) sweep(now time.Time) {
	for id, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, id)
		}
	}
	d.lastSweep = now
}
