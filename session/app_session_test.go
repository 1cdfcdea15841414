package session_test

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_record_loans/clock"
	"Gin_postgres_redis_record_loans/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*session.AppSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return session.NewAppSessionStore(rdb, time.Hour, clock.NewFixed(now)), mr
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Create(ctx, "sid-1", "alice"))
	as, err := s.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", as.ActorID)
	assert.Equal(t, now.Unix(), as.IssuedAt)
	assert.Equal(t, now.Add(time.Hour).Unix(), as.ExpiresAt)
}

func TestGetUnknownSession(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	require.NoError(t, s.Create(ctx, "sid-1", "alice"))

	mr.FastForward(time.Hour + time.Second)
	_, err := s.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	require.NoError(t, s.Create(ctx, "sid-1", "alice"))
	require.NoError(t, s.Create(ctx, "sid-2", "alice"))

	require.NoError(t, s.Delete(ctx, "sid-1"))
	_, err := s.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNoSession)

	members, err := mr.SMembers("lending:actor_sessions:alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"sid-2"}, members)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "sid-1"))
}

func TestRevokeAllForActor(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Create(ctx, "a1", "alice"))
	require.NoError(t, s.Create(ctx, "a2", "alice"))
	require.NoError(t, s.Create(ctx, "b1", "bob"))

	require.NoError(t, s.RevokeAllForActor(ctx, "alice"))

	for _, id := range []string{"a1", "a2"} {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, session.ErrNoSession, id)
	}
	as, err := s.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "bob", as.ActorID)
}
