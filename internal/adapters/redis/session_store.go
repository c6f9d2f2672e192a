package redis

// Package redis provides Redis-based adapters for the LMS auth bridge.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/ports"
)

const (
	defaultSessionPrefix = "session:"
	defaultUserPrefix    = "user_sessions:"

	fieldIdentity = "identity"
	fieldLastSeen = "last_seen_at"
)

// touchScript updates last-seen and the TTL only when the session still exists,
// so an expired or deleted session is never resurrected by a late request.
var touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

// saveScript creates a session hash in one step: identity, last-seen and TTL
// land together or not at all. Returns 0 when the id already exists.
var saveScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// indexScript adds a session id to the per-user set. The set TTL only grows.
var indexScript = redis.NewScript(`
redis.call("SADD", KEYS[1], ARGV[1])
local ttl = tonumber(ARGV[2])
if ttl > 0 and redis.call("PTTL", KEYS[1]) < ttl then
  redis.call("PEXPIRE", KEYS[1], ttl)
end
return 1
`)

// SessionStore is a Redis-based session store for production use.
//
// Each session lives in a hash keyed by id. The identity snapshot is written once
// at creation and is never modified; only last_seen_at and the key TTL move.
// A per-user set indexes session ids so every session of a user can be revoked.
type SessionStore struct {
	client     redis.UniversalClient
	prefix     string
	userPrefix string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, defaultSessionPrefix)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
// The per-user index uses the same prefix namespace.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	userPrefix := defaultUserPrefix
	if prefix != defaultSessionPrefix {
		userPrefix = prefix + "user:"
	}
	return &SessionStore{
		client:     client,
		prefix:     prefix,
		userPrefix: userPrefix,
	}
}

type storedIdentity struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      domainauth.Role `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (s *SessionStore) key(id string) string     { return s.prefix + id }
func (s *SessionStore) userKey(uid string) string { return s.userPrefix + uid }

// Save writes a new session. It refuses to overwrite an existing id.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session, ttl time.Duration) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if ttl <= 0 {
		return domainauth.ErrSessionExpired
	}

	data, err := json.Marshal(storedIdentity{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Email:     sess.Email,
		Name:      sess.Name,
		Role:      sess.Role,
		CreatedAt: sess.CreatedAt.UTC(),
		ExpiresAt: sess.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	lastSeen := sess.LastSeenAt
	if lastSeen.IsZero() {
		lastSeen = sess.CreatedAt
	}
	key := s.key(sess.ID)
	created, err := saveScript.Run(ctx, s.client, []string{key},
		fieldIdentity, data,
		fieldLastSeen, strconv.FormatInt(lastSeen.UnixMilli(), 10),
		ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("session %q already exists", sess.ID)
	}
	if sess.UserID == "" {
		return nil
	}

	// The index may sit in another cluster slot, so it is a second call. An
	// unindexed session could not be revoked and is removed. Index TTL is the
	// session's absolute window, relative to its own timestamps.
	indexTTL := sess.ExpiresAt.Sub(lastSeen)
	if err := indexScript.Run(ctx, s.client, []string{s.userKey(sess.UserID)}, sess.ID, indexTTL.Milliseconds()).Err(); err != nil {
		if delErr := s.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			err = errors.Join(err, fmt.Errorf("remove unindexed session: %w", delErr))
		}
		return fmt.Errorf("redis index session: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}

	fields, err := s.client.HMGet(ctx, s.key(id), fieldIdentity, fieldLastSeen).Result()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis hmget: %w", err)
	}
	raw, ok := fields[0].(string)
	if !ok || raw == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}

	var stored storedIdentity
	if unmarshalErr := json.Unmarshal([]byte(raw), &stored); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	sess := domainauth.Session{
		ID:         stored.ID,
		UserID:     stored.UserID,
		Email:      stored.Email,
		Name:       stored.Name,
		Role:       stored.Role,
		CreatedAt:  stored.CreatedAt,
		LastSeenAt: stored.CreatedAt,
		ExpiresAt:  stored.ExpiresAt,
	}
	if ms, ok := fields[1].(string); ok {
		if v, parseErr := strconv.ParseInt(ms, 10, 64); parseErr == nil {
			sess.LastSeenAt = time.UnixMilli(v).UTC()
		}
	}
	return sess, nil
}

// Touch records activity and resets the key TTL.
func (s *SessionStore) Touch(ctx context.Context, id string, seenAt time.Time, ttl time.Duration) error {
	if id == "" {
		return domainauth.ErrSessionNotFound
	}
	if ttl <= 0 {
		return domainauth.ErrSessionExpired
	}
	res, err := touchScript.Run(ctx, s.client,
		[]string{s.key(id)},
		fieldLastSeen, strconv.FormatInt(seenAt.UnixMilli(), 10), ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis touch: %w", err)
	}
	if res == 0 {
		return domainauth.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	sess, err := s.Get(ctx, id)
	if err != nil && !errors.Is(err, domainauth.ErrSessionNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	if err == nil && sess.UserID != "" {
		pipe.SRem(ctx, s.userKey(sess.UserID), id)
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil {
		return fmt.Errorf("redis delete session: %w", execErr)
	}
	return nil
}

// DeleteByUser removes every session indexed for userID.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	uk := s.userKey(userID)
	ids, err := s.client.SMembers(ctx, uk).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}

	pipe := s.client.TxPipeline()
	delCmd := pipe.Del(ctx, keys...)
	pipe.Del(ctx, uk)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis delete user sessions: %w", err)
	}
	return int(delCmd.Val()), nil
}
