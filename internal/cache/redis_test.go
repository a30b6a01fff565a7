package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/harborhop/config"
	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/Domenick1991/harborhop/internal/service/booking"
	"github.com/Domenick1991/harborhop/internal/voyage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ booking.DraftStore = (*RedisCache)(nil)
	_ booking.Locker     = (*RedisCache)(nil)
	_ voyage.Cache       = (*RedisCache)(nil)
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, 30*time.Minute)
	assert.NotNil(t, c)
	assert.Equal(t, 30*time.Minute, c.draftTTL)
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "draft:abc", draftKey("abc"))
	assert.Equal(t, "lock:reservation:user:u-42", reservationLockKey("u-42"))
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheWithClient(client, 30*time.Minute), mr
}

func TestRedisCache_DraftRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	departure := time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)

	draft := &domain.ReservationDraft{
		Token:           "tok-1",
		UserID:          "user-1",
		TripType:        domain.TripTypeOneWay,
		OriginName:      "Batangas",
		DestinationName: "Calapan",
		DepartureDate:   departure,
		Adults:          2,
		Children:        1,
	}
	require.NoError(t, c.SaveDraft(ctx, draft))
	assert.Equal(t, 30*time.Minute, mr.TTL("draft:tok-1"))

	got, err := c.GetDraft(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 2, got.Adults)
	assert.True(t, got.DepartureDate.Equal(departure))

	require.NoError(t, c.DeleteDraft(ctx, "tok-1"))
	_, err = c.GetDraft(ctx, "tok-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestRedisCache_DraftExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveDraft(ctx, &domain.ReservationDraft{Token: "tok-2"}))
	mr.FastForward(31 * time.Minute)

	_, err := c.GetDraft(ctx, "tok-2")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestRedisCache_GetJSON(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var routes []domain.Route
	hit, err := c.GetJSON(ctx, "cache:routes", &routes)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "cache:routes", []domain.Route{{Origin: domain.Location{ID: 1, Name: "Batangas"}}}, time.Minute))
	hit, err = c.GetJSON(ctx, "cache:routes", &routes)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, routes, 1)
	assert.Equal(t, "Batangas", routes[0].Origin.Name)

	require.NoError(t, mr.Set("cache:broken", "{not json"))
	_, err = c.GetJSON(ctx, "cache:broken", &routes)
	assert.Error(t, err)
}

func TestRedisCache_ReservationLock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	token, ok, err := c.AcquireReservationLock(ctx, "user-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = c.AcquireReservationLock(ctx, "user-1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	other, ok, err := c.AcquireReservationLock(ctx, "user-2", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, token, other)

	require.NoError(t, c.ReleaseReservationLock(ctx, "user-1", token))
	assert.False(t, mr.Exists(reservationLockKey("user-1")))

	_, ok, err = c.AcquireReservationLock(ctx, "user-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_StaleReleaseKeepsNewHolder(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	first, ok, err := c.AcquireReservationLock(ctx, "user-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// the first holder overruns its TTL and a second request takes the lock
	mr.FastForward(31 * time.Second)
	second, ok, err := c.AcquireReservationLock(ctx, "user-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.ReleaseReservationLock(ctx, "user-1", first))

	held, err := mr.Get(reservationLockKey("user-1"))
	require.NoError(t, err)
	assert.Equal(t, second, held)

	_, ok, err = c.AcquireReservationLock(ctx, "user-1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}
