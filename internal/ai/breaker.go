package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromabiz/palette-api/internal/palette"
)

// ErrUpstreamOpen is returned without calling Gemini while the breaker is
// open. Callers treat it like any other upstream failure (fallback or
// apology), just without waiting out the request timeout first.
var ErrUpstreamOpen = errors.New("ai: upstream circuit open")

type breakerState int

const (
	breakerClosed breakerState = iota // healthy, calls flow
	breakerOpen                       // failing, calls short-circuit
	breakerProbe                      // cooldown elapsed, one call tests recovery
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerProbe:
		return "probe"
	default:
		return "unknown"
	}
}

// Breaker wraps a Client with a circuit breaker so a dead upstream fails
// fast. After failureThreshold consecutive errors calls short-circuit with
// ErrUpstreamOpen; after cooldown one probe call is let through, and its
// outcome closes or reopens the circuit.
type Breaker struct {
	inner Client

	mu               sync.Mutex
	state            breakerState
	failures         int
	openedAt         time.Time
	failureThreshold int
	cooldown         time.Duration
}

func NewBreaker(inner Client, failureThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		inner:            inner,
		state:            breakerClosed,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
	}
}

func (b *Breaker) GeneratePalettes(ctx context.Context, profile palette.BusinessProfile) ([]palette.Palette, error) {
	if !b.allow() {
		return nil, ErrUpstreamOpen
	}
	palettes, err := b.inner.GeneratePalettes(ctx, profile)
	b.record(err)
	return palettes, err
}

func (b *Breaker) Refine(ctx context.Context, message string, rc palette.ChatContext) (string, error) {
	if !b.allow() {
		return "", ErrUpstreamOpen
	}
	answer, err := b.inner.Refine(ctx, message, rc)
	b.record(err)
	return answer, err
}

// State reports the current circuit state name, for logging.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState().String()
}

// currentState handles the open->probe transition. Callers hold mu.
func (b *Breaker) currentState() breakerState {
	if b.state == breakerOpen && time.Since(b.openedAt) >= b.cooldown {
		b.state = breakerProbe
	}
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState() != breakerOpen
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = breakerClosed
		b.failures = 0
		return
	}

	b.failures++
	switch b.state {
	case breakerClosed:
		if b.failures >= b.failureThreshold {
			b.state = breakerOpen
			b.openedAt = time.Now()
		}
	case breakerProbe:
		b.state = breakerOpen
		b.openedAt = time.Now()
	}
}
