package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
	"examvault-membership/internal/infra/metrics"
	red "examvault-membership/internal/infra/redis"
)

var _ repository.ProfileRepository = (*profileRepoCacheDecorator)(nil)

// profileRepoCacheDecorator caches profile reads in Redis. Entitlement checks
// hit the profile row on every gated page, so reads dominate writes by orders
// of magnitude. Every Save invalidates the key before writing through, so a
// grant is visible on the next read.
type profileRepoCacheDecorator struct {
	inner repository.ProfileRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProfileRepoCacheDecorator(inner repository.ProfileRepository, cache red.RedisClient, ttl time.Duration) repository.ProfileRepository {
	return &profileRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func profileKey(userID string) string { return fmt.Sprintf("profile:%s", userID) }

func (d *profileRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	_ = d.cache.Del(ctx, profileKey(p.UserID))
	return d.inner.Save(ctx, tx, p)
}

func (d *profileRepoCacheDecorator) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error) {
	// Transactional reads bypass the cache: a grant in flight must see the
	// committed row, not a cached copy.
	if tx != nil {
		return d.inner.FindByUserID(ctx, tx, userID)
	}

	key := profileKey(userID)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var p model.UserProfile
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("profile", "hit")
			return &p, nil
		}
	}

	metrics.IncCacheRequest("profile", "miss")
	p, err := d.inner.FindByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

func (d *profileRepoCacheDecorator) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	return d.inner.LockUser(ctx, tx, userID)
}
