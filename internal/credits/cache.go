package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"salescoach-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds short-lived view snapshots (acting balance, team user
// list) in Redis. The ledger stays authoritative: entries expire and a
// refresh between a mutation and the next tick may serve stale data,
// which the view tolerates.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func balanceKey(teamID, memberID string) string {
	return fmt.Sprintf("credits:balance:%s:%s", teamID, memberID)
}

func usersKey(teamID string) string {
	return fmt.Sprintf("credits:users:%s", teamID)
}

func (c *Cache) Balance(ctx context.Context, teamID, memberID string) (int64, bool, error) {
	v, err := c.rdb.Get(ctx, balanceKey(teamID, memberID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Treat unreadable entries as a miss; the next refresh rewrites them.
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Cache) SetBalance(ctx context.Context, teamID, memberID string, balance int64) error {
	return c.rdb.Set(ctx, balanceKey(teamID, memberID), strconv.FormatInt(balance, 10), c.ttl).Err()
}

func (c *Cache) Users(ctx context.Context, teamID string) ([]User, bool, error) {
	v, err := c.rdb.Get(ctx, usersKey(teamID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var users []User
	if err := json.Unmarshal(v, &users); err != nil {
		return nil, false, nil
	}
	return users, true, nil
}

func (c *Cache) SetUsers(ctx context.Context, teamID string, users []User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, usersKey(teamID), raw, c.ttl).Err()
}

// bulkLockTTL bounds how long a crashed bulk run can block a team.
const bulkLockTTL = 30 * time.Second

func bulkLockKey(teamID string) string {
	return fmt.Sprintf("credits:bulk-lock:%s", teamID)
}

// TryBulkLock guards a team against overlapping sequential bulk runs.
// Returns the holder token needed to release the lock.
func (c *Cache) TryBulkLock(ctx context.Context, teamID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := utils.AcquireOpLock(ctx, c.rdb, bulkLockKey(teamID), token, bulkLockTTL)
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (c *Cache) ReleaseBulkLock(ctx context.Context, teamID, token string) error {
	return utils.ReleaseOpLock(ctx, c.rdb, bulkLockKey(teamID), token)
}
