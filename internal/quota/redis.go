package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the daily counts in a per-identifier hash keyed by the
// current UTC day, so the window rolls over by key rotation and stale keys
// expire on their own. Unlike a soft limiter this store fails closed: a
// Redis error fails the request rather than handing out free calls.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(id string, now time.Time) string {
	return fmt.Sprintf("chromabiz:quota:%s:%s", now.UTC().Format("2006-01-02"), id)
}

// consumeScript atomically checks and increments one field of the daily
// hash, then reads back both counts.
// KEYS[1] = daily quota hash
// ARGV[1] = field ("generation" or "revision")
// ARGV[2] = limit for that field
// ARGV[3] = key TTL seconds
// Returns: [generations_used, revisions_used, 1=consumed/0=denied]
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local field = ARGV[1]
local limit = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local used = tonumber(redis.call('HGET', key, field) or '0')
local consumed = 0
if used < limit then
    redis.call('HINCRBY', key, field, 1)
    redis.call('EXPIRE', key, ttl)
    consumed = 1
end

local gen = tonumber(redis.call('HGET', key, 'generation') or '0')
local rev = tonumber(redis.call('HGET', key, 'revision') or '0')
return {gen, rev, consumed}
`)

func (s *RedisStore) CheckAndConsume(ctx context.Context, id string, kind Kind) (Remaining, error) {
	now := s.now()
	limit := GenerationLimit
	if kind == KindRevision {
		limit = RevisionLimit
	}
	// Keep the key alive past midnight so late readers still see it.
	ttl := int64(nextReset(now).Sub(now).Seconds()) + 3600

	res, err := consumeScript.Run(ctx, s.rdb, []string{s.key(id, now)},
		kind.String(), limit, ttl,
	).Int64Slice()
	if err != nil {
		return Remaining{}, fmt.Errorf("quota consume for %s: %w", id, err)
	}
	if len(res) != 3 {
		return Remaining{}, fmt.Errorf("quota consume for %s: unexpected script reply of length %d", id, len(res))
	}

	rem := boundedRemaining(res[0], res[1], now)
	if res[2] == 0 {
		return rem, ErrExceeded
	}
	return rem, nil
}

func (s *RedisStore) Peek(ctx context.Context, id string) (Remaining, error) {
	now := s.now()
	vals, err := s.rdb.HMGet(ctx, s.key(id, now), "generation", "revision").Result()
	if err != nil {
		return Remaining{}, fmt.Errorf("quota peek for %s: %w", id, err)
	}

	var gen, rev int64
	if n, ok := asInt64(vals[0]); ok {
		gen = n
	}
	if n, ok := asInt64(vals[1]); ok {
		rev = n
	}
	return boundedRemaining(gen, rev, now), nil
}

func boundedRemaining(genUsed, revUsed int64, now time.Time) Remaining {
	rem := Remaining{
		Generations: GenerationLimit - int(genUsed),
		Revisions:   RevisionLimit - int(revUsed),
		ResetAt:     nextReset(now),
	}
	if rem.Generations < 0 {
		rem.Generations = 0
	}
	if rem.Revisions < 0 {
		rem.Revisions = 0
	}
	return rem
}

func asInt64(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}
