package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

const tokenKeyPrefix = "toplist:token:"

// TokenStore keeps opaque session tokens in Redis; expiry rides on the key
// TTL so revocation-by-timeout needs no sweeper.
type TokenStore struct{ c *redis.Client }

func NewTokenStore(addr, pass string, db int) *TokenStore {
	return &TokenStore{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func NewTokenStoreWithClient(c *redis.Client) *TokenStore { return &TokenStore{c: c} }

func (s *TokenStore) Put(ctx context.Context, token string, sess domain.Session, ttl time.Duration) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}
	return s.c.Set(ctx, tokenKeyPrefix+token, b, ttl).Err()
}

func (s *TokenStore) Lookup(ctx context.Context, token string) (domain.Session, bool, error) {
	b, err := s.c.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return domain.Session{}, false, fmt.Errorf("parse session: %w", err)
	}
	return sess, true, nil
}

func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.c.Del(ctx, tokenKeyPrefix+token).Err()
}

// CountLive scans rather than KEYS so a busy instance is not blocked.
func (s *TokenStore) CountLive(ctx context.Context) (int64, error) {
	var count int64
	iter := s.c.Scan(ctx, 0, tokenKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
