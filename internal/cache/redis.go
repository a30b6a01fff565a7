package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/harborhop/config"
	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client   *redis.Client
	draftTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, draftTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		draftTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, draftTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, draftTTL: draftTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetJSON decodes the value at key into dst. It reports false on a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisCache) SaveDraft(ctx context.Context, draft *domain.ReservationDraft) error {
	return c.SetJSON(ctx, draftKey(draft.Token), draft, c.draftTTL)
}

func (c *RedisCache) GetDraft(ctx context.Context, token string) (*domain.ReservationDraft, error) {
	var draft domain.ReservationDraft
	ok, err := c.GetJSON(ctx, draftKey(token), &draft)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return &draft, nil
}

func (c *RedisCache) DeleteDraft(ctx context.Context, token string) error {
	return c.client.Del(ctx, draftKey(token)).Err()
}

// AcquireReservationLock takes the per-user lock and returns the token that
// must be presented to release it.
func (c *RedisCache) AcquireReservationLock(ctx context.Context, userID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, reservationLockKey(userID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseReservationLock(ctx context.Context, userID, token string) error {
	return releaseLockScript.Run(ctx, c.client, []string{reservationLockKey(userID)}, token).Err()
}

func draftKey(token string) string {
	return "draft:" + token
}

func reservationLockKey(userID string) string {
	return fmt.Sprintf("lock:reservation:user:%s", userID)
}
