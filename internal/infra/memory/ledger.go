package memory

import (
	"context"
	"sort"
	"sync"

	"globetrotter/internal/domain"
)

// Ledger keeps finished games in memory.
type Ledger struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Record(_ context.Context, entry domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// List returns the user's entries, newest first. limit <= 0 means no limit.
func (l *Ledger) List(_ context.Context, username string, limit int) ([]domain.LedgerEntry, error) {
	l.mu.RLock()
	out := make([]domain.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Username == username {
			out = append(out, e)
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
