// Package quota gates the two AI-invoking operations against fixed daily
// per-client limits. Counts live in a fixed window aligned to the UTC
// calendar day: a client out of quota at 23:59 UTC has it back a minute
// later. Records reset lazily on access; there is no rolling window.
package quota

import (
	"context"
	"errors"
	"time"
)

// Daily allowances per client identifier.
const (
	GenerationLimit = 1
	RevisionLimit   = 3
)

// Kind selects which allowance an operation consumes.
type Kind int

const (
	KindGeneration Kind = iota
	KindRevision
)

func (k Kind) String() string {
	if k == KindGeneration {
		return "generation"
	}
	return "revision"
}

// ErrExceeded is returned when the relevant count already sits at its
// limit. There is no retry hint; the caller waits for the next UTC day.
var ErrExceeded = errors.New("daily quota exceeded")

// Remaining reports post-operation allowances for both kinds.
type Remaining struct {
	Generations int
	Revisions   int
	ResetAt     time.Time
}

// Store is the quota bookkeeping behind the API handlers. CheckAndConsume
// must be atomic per identifier: concurrent requests racing for the last
// slot get exactly one success.
type Store interface {
	// CheckAndConsume increments the count for kind, or returns
	// ErrExceeded without mutating anything when the limit is reached.
	CheckAndConsume(ctx context.Context, id string, kind Kind) (Remaining, error)
	// Peek reports current allowances without consuming.
	Peek(ctx context.Context, id string) (Remaining, error)
}

// dayStart truncates t to the start of its UTC calendar day.
func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// nextReset is the upcoming UTC midnight, reported to clients as the
// moment both counts replenish.
func nextReset(t time.Time) time.Time {
	return dayStart(t).Add(24 * time.Hour)
}
