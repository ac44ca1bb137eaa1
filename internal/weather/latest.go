package weather

import (
	"context"
	"sync"

	"github.com/lolweather/lolweather/internal/metrics"
)

// Latest guarantees at most one surfaced result per view: starting a new
// request for a key cancels the previous one, and only the newest ticket
// may commit.
type Latest struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]*latestEntry
}

type latestEntry struct {
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one in-flight request for a view.
type Ticket struct {
	key    string
	seq    uint64
	cancel context.CancelFunc
}

func (t Ticket) Seq() uint64 { return t.seq }

func NewLatest() *Latest {
	return &Latest{entries: make(map[string]*latestEntry)}
}

// Begin starts a request for key. The returned context is canceled when a
// newer request for the same key begins. Sequence numbers are global so a
// ticket from a finished view never matches a later entry for the same key.
func (l *Latest) Begin(ctx context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &latestEntry{}
		l.entries[key] = e
	}
	if e.cancel != nil {
		e.cancel()
	}
	l.seq++
	e.seq = l.seq
	e.cancel = cancel
	return ctx, Ticket{key: key, seq: e.seq, cancel: cancel}
}

// IsCurrent reports whether t is still the newest ticket for its key.
func (l *Latest) IsCurrent(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[t.key]
	return ok && e.seq == t.seq
}

// Commit runs apply only if t is still the newest ticket for its key and
// reports whether it ran. Either way the ticket is finished. The entry for
// the key is dropped once its newest ticket commits, and apply runs without
// holding the lock.
func (l *Latest) Commit(t Ticket, apply func()) bool {
	if t.cancel != nil {
		defer t.cancel()
	}

	l.mu.Lock()
	e, ok := l.entries[t.key]
	current := ok && e.seq == t.seq
	if current {
		delete(l.entries, t.key)
	}
	l.mu.Unlock()

	if !current {
		metrics.SupersededRequests.Inc()
		return false
	}
	apply()
	return true
}

// Len reports how many views have a request in flight.
func (l *Latest) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
