package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/inkhorn/inkhorn/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// feedCacheRepo implements FeedCacheRepository using GORM.
type feedCacheRepo struct {
	db *gorm.DB
}

// NewFeedCacheRepository creates a new FeedCacheRepository.
func NewFeedCacheRepository(db *gorm.DB) *feedCacheRepo {
	return &feedCacheRepo{db: db}
}

// Upsert inserts or replaces a cached feed by key.
func (r *feedCacheRepo) Upsert(ctx context.Context, feed *models.CachedFeed) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(feed).Error
	if err != nil {
		return fmt.Errorf("upserting cached feed: %w", err)
	}
	return nil
}

// GetByKey retrieves a cached feed, (nil, nil) on a miss.
func (r *feedCacheRepo) GetByKey(ctx context.Context, key string) (*models.CachedFeed, error) {
	var feed models.CachedFeed
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&feed).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting cached feed by key: %w", err)
	}
	return &feed, nil
}

// Count returns the number of cached feeds.
func (r *feedCacheRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CachedFeed{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting cached feeds: %w", err)
	}
	return count, nil
}

// DeleteOldest removes the n oldest rows by CachedAt in one batch.
func (r *feedCacheRepo) DeleteOldest(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.CachedFeed{}).
		Order("cached_at ASC").
		Limit(n).
		Pluck("key", &keys).Error
	if err != nil {
		return fmt.Errorf("selecting oldest cached feeds: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CachedFeed{}).Error; err != nil {
		return fmt.Errorf("deleting oldest cached feeds: %w", err)
	}
	return nil
}

// DeleteByKey removes a single cached feed.
func (r *feedCacheRepo) DeleteByKey(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CachedFeed{}).Error; err != nil {
		return fmt.Errorf("deleting cached feed: %w", err)
	}
	return nil
}

// DeleteOlderThan removes rows with CachedAt before the cutoff.
func (r *feedCacheRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("cached_at < ?", cutoff).Delete(&models.CachedFeed{})
	if res.Error != nil {
		return 0, fmt.Errorf("pruning cached feeds: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Clear empties the feeds table.
func (r *feedCacheRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.CachedFeed{}).Error; err != nil {
		return fmt.Errorf("clearing cached feeds: %w", err)
	}
	return nil
}

// Ensure feedCacheRepo implements FeedCacheRepository at compile time.
var _ FeedCacheRepository = (*feedCacheRepo)(nil)
