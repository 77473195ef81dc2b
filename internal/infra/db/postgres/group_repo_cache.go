package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/metrics"
)

var _ repository.GroupRepository = (*groupRepoCacheDecorator)(nil)

const groupListKey = "groups:all"

// ListCache is the part of the Redis store the decorator uses.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// groupRepoCacheDecorator caches the full group list, which every promotion
// panel render reads. Writes drop the cached list.
type groupRepoCacheDecorator struct {
	inner repository.GroupRepository
	cache ListCache
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewGroupRepoCacheDecorator(inner repository.GroupRepository, cache ListCache, ttl time.Duration, logger *zerolog.Logger) repository.GroupRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "GroupRepoCache").Logger()
	return &groupRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func (d *groupRepoCacheDecorator) invalidate(ctx context.Context) {
	if err := d.cache.Delete(ctx, groupListKey); err != nil {
		d.log.Warn().Err(err).Msg("group cache invalidate failed")
	}
}

func (d *groupRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, g *model.Group) error {
	if err := d.inner.Upsert(ctx, tx, g); err != nil {
		return err
	}
	d.invalidate(ctx)
	return nil
}

func (d *groupRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	ok, err := d.inner.Delete(ctx, tx, chatID)
	if err != nil {
		return false, err
	}
	if ok {
		d.invalidate(ctx)
	}
	return ok, nil
}

func (d *groupRepoCacheDecorator) List(ctx context.Context, tx repository.Tx) ([]*model.Group, error) {
	// reads inside a transaction must see the transaction's writes
	if tx != nil {
		metrics.IncCacheRequest("group_list", "bypass")
		return d.inner.List(ctx, tx)
	}

	raw, found, err := d.cache.Get(ctx, groupListKey)
	if err != nil {
		d.log.Warn().Err(err).Msg("group cache read failed")
	}
	if found {
		var groups []*model.Group
		if json.Unmarshal(raw, &groups) == nil {
			metrics.IncCacheRequest("group_list", "hit")
			return groups, nil
		}
	}

	metrics.IncCacheRequest("group_list", "miss")
	groups, err := d.inner.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(groups); err == nil {
		_ = d.cache.Put(ctx, groupListKey, b, d.ttl)
	}
	return groups, nil
}

func (d *groupRepoCacheDecorator) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.Count(ctx, tx)
}
