package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// KeyValueRepository is an in-process store.KeyValueStore, used when Redis is not configured
type KeyValueRepository struct {
	cache *cache.Cache
}

// NewKeyValueRepository keeps records for ttl (0 = forever), purging expired items every 10 minutes
func NewKeyValueRepository(ttl time.Duration) *KeyValueRepository {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	return &KeyValueRepository{
		cache: cache.New(expiration, 10*time.Minute),
	}
}

func (r *KeyValueRepository) Get(_ context.Context, key string) (string, bool, error) {
	x, found := r.cache.Get(key)
	if !found {
		return "", false, nil
	}
	value, _ := x.(string)
	return value, true, nil
}

func (r *KeyValueRepository) Set(_ context.Context, key, value string) error {
	r.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (r *KeyValueRepository) Remove(_ context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}

// Len is the number of live records
func (r *KeyValueRepository) Len() int {
	return r.cache.ItemCount()
}
