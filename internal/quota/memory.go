package quota

import (
	"context"
	"sync"
	"time"
)

type record struct {
	generationsUsed int
	revisionsUsed   int
	windowStart     time.Time
}

// MemoryStore is the single-process quota store: a mutex-guarded map of
// identifier to daily counts. The map grows with distinct identifiers, so
// Sweep must run periodically to drop records from past days.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) CheckAndConsume(_ context.Context, id string, kind Kind) (Remaining, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := dayStart(now)

	rec, ok := s.records[id]
	if !ok {
		rec = &record{windowStart: today}
		s.records[id] = rec
	} else if rec.windowStart.Before(today) {
		rec.generationsUsed = 0
		rec.revisionsUsed = 0
		rec.windowStart = today
	}

	switch kind {
	case KindGeneration:
		if rec.generationsUsed >= GenerationLimit {
			return remainingOf(rec, now), ErrExceeded
		}
		rec.generationsUsed++
	case KindRevision:
		if rec.revisionsUsed >= RevisionLimit {
			return remainingOf(rec, now), ErrExceeded
		}
		rec.revisionsUsed++
	}

	return remainingOf(rec, now), nil
}

func (s *MemoryStore) Peek(_ context.Context, id string) (Remaining, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[id]
	if !ok || rec.windowStart.Before(dayStart(now)) {
		// Unknown or stale record reads as a full allowance. The stored
		// counts are left alone; the next consume resets them.
		return Remaining{
			Generations: GenerationLimit,
			Revisions:   RevisionLimit,
			ResetAt:     nextReset(now),
		}, nil
	}
	return remainingOf(rec, now), nil
}

// Sweep drops records whose window is older than the current UTC day and
// reports how many were removed. Callers run it on a timer; nothing else
// ever deletes records.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := dayStart(s.now())
	removed := 0
	for id, rec := range s.records {
		if rec.windowStart.Before(today) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked identifiers.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func remainingOf(rec *record, now time.Time) Remaining {
	return Remaining{
		Generations: GenerationLimit - rec.generationsUsed,
		Revisions:   RevisionLimit - rec.revisionsUsed,
		ResetAt:     nextReset(now),
	}
}
