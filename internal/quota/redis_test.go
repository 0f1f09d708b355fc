package quota

import (
	"testing"
	"time"
)

func TestRedisStore_KeyRotatesWithUTCDay(t *testing.T) {
	s := NewRedisStore(nil)

	day1 := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(time.Minute)

	k1 := s.key("1.2.3.4", day1)
	k2 := s.key("1.2.3.4", day2)
	if k1 == k2 {
		t.Errorf("keys across a UTC midnight must differ: %q", k1)
	}
	if k1 != "chromabiz:quota:2026-03-14:1.2.3.4" {
		t.Errorf("unexpected key format: %q", k1)
	}
}

func TestRedisStore_KeyUsesUTC(t *testing.T) {
	s := NewRedisStore(nil)
	// 23:00 in UTC-5 is already the next UTC day.
	local := time.Date(2026, 3, 14, 23, 0, 0, 0, time.FixedZone("EST", -5*3600))
	if got := s.key("x", local); got != "chromabiz:quota:2026-03-15:x" {
		t.Errorf("expected UTC day in key, got %q", got)
	}
}

func TestBoundedRemaining_NeverNegative(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rem := boundedRemaining(5, 10, now)
	if rem.Generations != 0 || rem.Revisions != 0 {
		t.Errorf("remaining must clamp at zero, got %+v", rem)
	}

	rem = boundedRemaining(0, 1, now)
	if rem.Generations != GenerationLimit || rem.Revisions != RevisionLimit-1 {
		t.Errorf("unexpected remaining: %+v", rem)
	}
	if !rem.ResetAt.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected reset time: %v", rem.ResetAt)
	}
}

func TestAsInt64(t *testing.T) {
	if n, ok := asInt64("3"); !ok || n != 3 {
		t.Errorf("asInt64(\"3\") = %d, %v", n, ok)
	}
	if _, ok := asInt64(nil); ok {
		t.Error("nil field should not parse")
	}
	if _, ok := asInt64("abc"); ok {
		t.Error("non-numeric field should not parse")
	}
}
