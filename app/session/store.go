package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

// Store maps session IDs to user IDs and holds one-shot flash messages,
// both expiring with the session TTL.
type Store interface {
	Set(ctx context.Context, sid string, userID uint, ttl time.Duration) error
	Get(ctx context.Context, sid string) (uint, error)
	Delete(ctx context.Context, sid string) error
	PushFlash(ctx context.Context, sid string, ttl time.Duration, flash string) error
	PopFlashes(ctx context.Context, sid string) ([]string, error)
}

// RedisStore keeps sessions under session:<sid> and flashes under
// flash:<sid>.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Set(ctx context.Context, sid string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, "session:"+sid, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sid string) (uint, error) {
	val, err := s.rdb.Get(ctx, "session:"+sid).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSession
		}
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}
	return uint(id), nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, "session:"+sid, "flash:"+sid).Err()
}

func (s *RedisStore) PushFlash(ctx context.Context, sid string, ttl time.Duration, flash string) error {
	key := "flash:" + sid
	if err := s.rdb.RPush(ctx, key, flash).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) PopFlashes(ctx context.Context, sid string) ([]string, error) {
	key := "flash:" + sid
	vals, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) > 0 {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

// MemoryStore is the in-process Store for running without Redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	flashes  map[string][]string
}

type memorySession struct {
	userID  uint
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession), flashes: make(map[string][]string)}
}

func (s *MemoryStore) Set(_ context.Context, sid string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = memorySession{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok || time.Now().After(sess.expires) {
		delete(s.sessions, sid)
		return 0, ErrNoSession
	}
	return sess.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	delete(s.flashes, sid)
	return nil
}

func (s *MemoryStore) PushFlash(_ context.Context, sid string, _ time.Duration, flash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes[sid] = append(s.flashes[sid], flash)
	return nil
}

func (s *MemoryStore) PopFlashes(_ context.Context, sid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals := s.flashes[sid]
	delete(s.flashes, sid)
	return vals, nil
}
