package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"globetrotter/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	userKey      = "globetrotter_user"
	timestampKey = "globetrotter_timestamp"
)

// IdentityStore persists the player identity in Redis as a key pair:
//
//	SET [{namespace}:]globetrotter_user      {json identity}
//	SET [{namespace}:]globetrotter_timestamp {unix millis}
//
// Both keys expire after ttl, so Redis drops identities the session store
// would discard anyway.
type IdentityStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewIdentityStore(client *redis.Client, namespace string, ttl time.Duration) *IdentityStore {
	return &IdentityStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *IdentityStore) Save(ctx context.Context, identity domain.PersistedIdentity) error {
	payload, err := json.Marshal(identity.Identity)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(userKey), payload, s.ttl)
		pipe.Set(ctx, s.key(timestampKey), identity.SavedAt.UnixMilli(), s.ttl)
		return nil
	})
	return err
}

// Load returns ok=false when either key is missing or unreadable.
func (s *IdentityStore) Load(ctx context.Context) (domain.PersistedIdentity, bool, error) {
	values, err := s.client.MGet(ctx, s.key(userKey), s.key(timestampKey)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.PersistedIdentity{}, false, err
	}
	if len(values) != 2 {
		return domain.PersistedIdentity{}, false, nil
	}
	rawUser, ok1 := values[0].(string)
	rawStamp, ok2 := values[1].(string)
	if !ok1 || !ok2 {
		return domain.PersistedIdentity{}, false, nil
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		return domain.PersistedIdentity{}, false, nil
	}
	millis, err := strconv.ParseInt(rawStamp, 10, 64)
	if err != nil {
		return domain.PersistedIdentity{}, false, nil
	}
	return domain.PersistedIdentity{Identity: identity, SavedAt: time.UnixMilli(millis)}, true, nil
}

func (s *IdentityStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key(userKey), s.key(timestampKey)).Err()
}

func (s *IdentityStore) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}
