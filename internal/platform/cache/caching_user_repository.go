// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flexora_backend/internal/feature/auth/domain/entity"
	"flexora_backend/internal/feature/auth/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of the
// profile read path (FindByID). It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
//
// Cached copies never carry the password hash; the login path (FindByEmail)
// always goes to the underlying store.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// cacheKey returns the Redis key for a user's profile entry.
func (c *CachingUserRepository) cacheKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// Create inserts a user via the underlying repository. Nothing to invalidate:
// a freshly assigned ID cannot have a cache entry yet.
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	return c.inner.Create(ctx, u)
}

// FindByEmail always hits the underlying store. The result includes the
// password hash for credential verification, so it must never be cached.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// FindByID retrieves a user's profile, checking cache first then falling
// back to the database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Cache a copy with the password hash stripped.
	// Best effort: a cache write failure must not fail the read.
	sanitized := *out
	sanitized.Password = ""
	if b, err := json.Marshal(&sanitized); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Update applies the update via the underlying repository and invalidates
// the user's cache entry.
func (c *CachingUserRepository) Update(ctx context.Context, id uint, fields map[string]any) (*entity.User, error) {
	out, err := c.inner.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		// Best effort: don't fail the update if cache invalidation fails
		_ = c.rdb.Del(ctx, c.cacheKey(id)).Err()
	}
	return out, nil
}
