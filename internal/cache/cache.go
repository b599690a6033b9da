package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/harutok/counts-service/internal/storage"
	"github.com/harutok/counts-service/internal/types"
	"github.com/harutok/counts-service/internal/types/users"
)

// CacheService wraps storage with Redis caching
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

// NewCacheService creates a new cache service
func NewCacheService(storage storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
	}
}

// Cache key patterns
const (
	DayCountsKey = "counts:%s:%d:%s" // counts:category:userID:day
	UserByIDKey  = "user:id:%d"      // user:id:userID
)

// Cache durations
const (
	// Day counts change on every count-up, so the TTL only bounds staleness
	// for reads that race an invalidation.
	DayCountsCacheDuration = 30 * time.Second
	// Users are immutable once registered.
	UserCacheDuration = 5 * time.Minute
)

// GetDayCounts returns cached counters for (userID, day) or fetches from DB.
// Misses (no row yet) are not cached.
func (c *CacheService) GetDayCounts(ctx context.Context, category types.Category, userID int64, day string) (map[string]int64, error) {
	key := fmt.Sprintf(DayCountsKey, category.Name, userID, day)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var counts map[string]int64
		if err := json.Unmarshal([]byte(cached), &counts); err == nil {
			return counts, nil
		}
	}

	// Cache miss - fetch from database
	counts, err := c.storage.GetDayCounts(ctx, category, userID, day)
	if err != nil {
		return nil, err
	}

	// Cache the result
	data, _ := json.Marshal(counts)
	c.redis.Set(ctx, key, data, DayCountsCacheDuration)

	return counts, nil
}

// IncrementDayCount forwards the write and invalidates the day's cached row
// so the next read sees the new value.
func (c *CacheService) IncrementDayCount(ctx context.Context, category types.Category, userID int64, day, field string) error {
	if err := c.storage.IncrementDayCount(ctx, category, userID, day, field); err != nil {
		return err
	}

	c.redis.Del(ctx, fmt.Sprintf(DayCountsKey, category.Name, userID, day))

	return nil
}

func (c *CacheService) CreateUser(ctx context.Context, email string) (users.User, error) {
	return c.storage.CreateUser(ctx, email)
}

// GetUser caches pure by-id lookups; filtered lookups (email involved) pass
// through to storage.
func (c *CacheService) GetUser(ctx context.Context, id int64, email string) (users.User, error) {
	if id <= 0 || email != "" {
		return c.storage.GetUser(ctx, id, email)
	}

	key := fmt.Sprintf(UserByIDKey, id)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var user users.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return user, nil
		}
	}

	// Cache miss - fetch from database
	user, err := c.storage.GetUser(ctx, id, email)
	if err != nil {
		return users.User{}, err
	}

	// Cache the result
	data, _ := json.Marshal(user)
	c.redis.Set(ctx, key, data, UserCacheDuration)

	return user, nil
}
