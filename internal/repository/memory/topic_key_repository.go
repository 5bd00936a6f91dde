package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TopicKeyRepository caches topic key material so the hot chat path does not
// hit the database for every frame. Keys never rotate, so a cached value is
// never stale; expiry only bounds memory.
type TopicKeyRepository struct {
	cache *cache.Cache
}

func NewTopicKeyRepository() *TopicKeyRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &TopicKeyRepository{
		cache: c,
	}
}

func (r *TopicKeyRepository) Save(topicId uuid.UUID, keyMaterial string) {
	r.cache.Set(topicId.String(), keyMaterial, cache.DefaultExpiration)
}

func (r *TopicKeyRepository) Get(topicId uuid.UUID) (string, bool) {
	if x, found := r.cache.Get(topicId.String()); found {
		return x.(string), true
	}
	return "", false
}

func (r *TopicKeyRepository) Delete(topicId uuid.UUID) {
	r.cache.Delete(topicId.String())
}
