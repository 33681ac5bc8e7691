package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/inkhorn/inkhorn/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postCacheRepo implements PostCacheRepository using GORM.
type postCacheRepo struct {
	db *gorm.DB
}

// NewPostCacheRepository creates a new PostCacheRepository.
func NewPostCacheRepository(db *gorm.DB) *postCacheRepo {
	return &postCacheRepo{db: db}
}

// Upsert inserts or replaces a cached post by key.
func (r *postCacheRepo) Upsert(ctx context.Context, post *models.CachedPost) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(post).Error
	if err != nil {
		return fmt.Errorf("upserting cached post: %w", err)
	}
	return nil
}

// GetByKey retrieves a cached post, (nil, nil) on a miss.
func (r *postCacheRepo) GetByKey(ctx context.Context, key string) (*models.CachedPost, error) {
	var post models.CachedPost
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting cached post by key: %w", err)
	}
	return &post, nil
}

// Count returns the number of cached posts.
func (r *postCacheRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CachedPost{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting cached posts: %w", err)
	}
	return count, nil
}

// DeleteOldest removes the n oldest rows by CachedAt in one batch.
func (r *postCacheRepo) DeleteOldest(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.CachedPost{}).
		Order("cached_at ASC").
		Limit(n).
		Pluck("key", &keys).Error
	if err != nil {
		return fmt.Errorf("selecting oldest cached posts: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CachedPost{}).Error; err != nil {
		return fmt.Errorf("deleting oldest cached posts: %w", err)
	}
	return nil
}

// DeleteByKey removes a single cached post.
func (r *postCacheRepo) DeleteByKey(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CachedPost{}).Error; err != nil {
		return fmt.Errorf("deleting cached post: %w", err)
	}
	return nil
}

// DeleteOlderThan removes rows with CachedAt before the cutoff.
func (r *postCacheRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("cached_at < ?", cutoff).Delete(&models.CachedPost{})
	if res.Error != nil {
		return 0, fmt.Errorf("pruning cached posts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Clear empties the posts table.
func (r *postCacheRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.CachedPost{}).Error; err != nil {
		return fmt.Errorf("clearing cached posts: %w", err)
	}
	return nil
}

// Ensure postCacheRepo implements PostCacheRepository at compile time.
var _ PostCacheRepository = (*postCacheRepo)(nil)
