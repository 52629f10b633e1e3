package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRepo appends events to a capped per-team Redis list. Retention is
// bounded by maxEvents per team; older entries are trimmed on append.
type RedisRepo struct {
	rdb       *redis.Client
	maxEvents int64
}

func NewRedisRepo(rdb *redis.Client, maxEvents int64) *RedisRepo {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &RedisRepo{rdb: rdb, maxEvents: maxEvents}
}

// defaultRecentEvents caps a Recent read when the caller passes no limit.
const defaultRecentEvents = 50

func eventsKey(teamID string) string {
	return fmt.Sprintf("audit:events:%s", teamID)
}

func (r *RedisRepo) Append(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := eventsKey(e.TeamID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, -r.maxEvents, -1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to n most recent events for the team, oldest first.
func (r *RedisRepo) Recent(ctx context.Context, teamID string, n int64) ([]Event, error) {
	if n <= 0 {
		n = defaultRecentEvents
	}
	raws, err := r.rdb.LRange(ctx, eventsKey(teamID), -n, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(raws))
	for _, raw := range raws {
		var e Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
