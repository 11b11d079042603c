package store

import (
	"context"
	"sync"
	"time"

	"github.com/globaledge/globaledge/shared/contracts"
)

// MemoryDraftStore keeps drafts in process. Expired drafts are invisible on
// read and removed by Sweep.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]contracts.BookingDraft
	now    func() time.Time
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: make(map[string]contracts.BookingDraft),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for expiry checks.
func (s *MemoryDraftStore) WithClock(now func() time.Time) *MemoryDraftStore {
	s.now = now
	return s
}

func (s *MemoryDraftStore) SaveDraft(ctx context.Context, draft contracts.BookingDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = draft
	return nil
}

func (s *MemoryDraftStore) GetDraft(ctx context.Context, id string) (contracts.BookingDraft, error) {
	if err := ctx.Err(); err != nil {
		return contracts.BookingDraft{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok || !s.now().Before(d.ExpiresAt) {
		return contracts.BookingDraft{}, ErrDraftNotFound
	}
	return d, nil
}

func (s *MemoryDraftStore) DeleteDraft(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

// Sweep drops expired drafts and reports how many were removed.
func (s *MemoryDraftStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, d := range s.drafts {
		if !now.Before(d.ExpiresAt) {
			delete(s.drafts, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryDraftStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
