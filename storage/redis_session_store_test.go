package storage

import (
	"context"
	"testing"
	"time"

	"routeerp_go/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStore(client), mr
}

func TestRedisSessionStoreSaveAndExpire(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("s1", "u1", time.Now().Add(time.Hour))))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Student u1", got.User.Name)

	ttl := mr.TTL(sessionKey("s1"))
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl %s", ttl)
	member, err := mr.SIsMember(userSessionsKey("u1"), "s1")
	require.NoError(t, err)
	assert.True(t, member)

	mr.FastForward(61 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Error(t, store.Save(ctx, newSession("s2", "u1", time.Now().Add(-time.Second))))
	assert.False(t, mr.Exists(sessionKey("s2")))
}

func TestRedisSessionStoreDelete(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, store.Save(ctx, newSession("s1", "u1", expires)))
	require.NoError(t, store.Save(ctx, newSession("s2", "u1", expires)))
	require.NoError(t, store.Save(ctx, newSession("s3", "u2", expires)))

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "missing"))
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	members, err := mr.Members(userSessionsKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, members)

	require.NoError(t, store.DeleteByUser(ctx, "u1"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, mr.Exists(userSessionsKey("u1")))

	got, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	require.NoError(t, store.DeleteByUser(ctx, "nobody"))
}

func TestRedisSessionStoreRefreshUserKeepsTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, store.Save(ctx, newSession("s1", "u1", expires)))
	require.NoError(t, store.Save(ctx, newSession("s2", "u1", expires)))
	require.NoError(t, store.Save(ctx, newSession("s3", "u2", expires)))
	mr.FastForward(10 * time.Minute)

	// s2 vanishes without its set entry being removed
	mr.Del(sessionKey("s2"))

	renamed := models.User{BaseModel: models.BaseModel{ID: "u1"}, Name: "Renamed", Role: models.RoleMentor}
	require.NoError(t, store.RefreshUser(ctx, renamed))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.User.Name)
	assert.Equal(t, models.RoleMentor, got.User.Role)

	ttl := mr.TTL(sessionKey("s1"))
	assert.True(t, ttl > 0 && ttl <= 50*time.Minute, "ttl %s", ttl)

	members, err := mr.Members(userSessionsKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, members)

	other, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, "Student u2", other.User.Name)
}
