// Package session keeps the app_session cookie → actor mapping in Redis.
// Sessions are issued by the external authenticator; this service only
// resolves and revokes them.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Gin_postgres_redis_record_loans/clock"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned for unknown or expired session ids.
var ErrNoSession = errors.New("session not found")

type AppSessionStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	clock clock.Clock
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration, clk clock.Clock) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl, clock: clk}
}

type AppSession struct {
	ActorID   string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(id string) string          { return fmt.Sprintf("lending:sess:%s", id) }
func actorSetKey(uid string) string { return fmt.Sprintf("lending:actor_sessions:%s", uid) }

func (s *AppSessionStore) TTL() time.Duration { return s.ttl }

func (s *AppSessionStore) Create(ctx context.Context, id, actorID string) error {
	if id == "" || actorID == "" {
		return errors.New("session: empty id or actor")
	}
	now := s.clock.Now()
	b, err := json.Marshal(AppSession{
		ActorID:   actorID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, actorSetKey(actorID), id)
	pipe.Expire(ctx, actorSetKey(actorID), s.ttl)
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "store session")
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrap(err, "load session")
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, actorSetKey(as.ActorID), id)
	}
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "delete session")
}

// RevokeAllForActor 撤销某个用户的全部会话
func (s *AppSessionStore) RevokeAllForActor(ctx context.Context, actorID string) error {
	ids, err := s.rdb.SMembers(ctx, actorSetKey(actorID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "list sessions")
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, actorSetKey(actorID))
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "revoke sessions")
}
