// Package lock provides a distributed lease used to keep at most one task
// working a given (zoneId, name, type) key at a time upstream of the
// handler (spec §7 concurrency notes: the core itself enforces nothing).
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned by Release when the lease was not held by token,
// either because it expired already or another caller holds it.
var ErrNotHeld = errors.New("lock: lease not held")

const keyPrefix = "clouddns:recordsetchange:lease:"

// releaseScript deletes key only if its value still matches token, so a
// caller never releases a lease it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// RedisLease is a Redis-backed mutual-exclusion lease keyed by zone id,
// record name, and record type, acquired with SET NX PX and released with a
// compare-and-delete Lua script.
type RedisLease struct {
	client *redis.Client
}

func NewRedisLease(addr, password string, db int) *RedisLease {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisLease{client: rdb}
}

// Acquire attempts to take the lease for (zoneID, name, recordType), valid
// for ttl. It returns a random token identifying this holder and ok=false
// if another task already holds it.
func (l *RedisLease) Acquire(ctx context.Context, zoneID, name, recordType string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.New().String()
	key := leaseKey(zoneID, name, recordType)

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives up a held lease. It is a no-op error if the caller's token
// no longer matches what is stored (already expired, or stolen after
// expiry by another caller).
func (l *RedisLease) Release(ctx context.Context, zoneID, name, recordType, token string) error {
	key := leaseKey(zoneID, name, recordType)
	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

func leaseKey(zoneID, name, recordType string) string {
	return keyPrefix + zoneID + ":" + name + ":" + recordType
}
