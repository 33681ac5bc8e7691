// Package repository provides data access layers over the offline cache
// database.
package repository

import (
	"context"
	"time"

	"github.com/inkhorn/inkhorn/internal/models"
)

// PostCacheRepository manages cached post rows.
type PostCacheRepository interface {
	// Upsert inserts or replaces a post by its key.
	Upsert(ctx context.Context, post *models.CachedPost) error
	// GetByKey returns the post for a key, or (nil, nil) on a miss.
	GetByKey(ctx context.Context, key string) (*models.CachedPost, error)
	// Count returns the number of cached posts.
	Count(ctx context.Context) (int64, error)
	// DeleteOldest removes the n rows with the oldest CachedAt in one batch.
	DeleteOldest(ctx context.Context, n int) error
	// DeleteByKey removes a single post.
	DeleteByKey(ctx context.Context, key string) error
	// DeleteOlderThan removes rows whose CachedAt predates the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// Clear empties the table.
	Clear(ctx context.Context) error
}

// FeedCacheRepository manages cached feed snapshots.
type FeedCacheRepository interface {
	Upsert(ctx context.Context, feed *models.CachedFeed) error
	GetByKey(ctx context.Context, key string) (*models.CachedFeed, error)
	Count(ctx context.Context) (int64, error)
	DeleteOldest(ctx context.Context, n int) error
	DeleteByKey(ctx context.Context, key string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Clear(ctx context.Context) error
}
