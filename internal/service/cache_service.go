// Package service implements the application services on top of the
// repositories and core engines.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/inkhorn/inkhorn/internal/models"
	"github.com/inkhorn/inkhorn/internal/repository"
)

// Table capacity limits. Eviction keeps each table at or below its cap
// immediately after every completed write.
const (
	// MaxCachedPosts is the posts table cap.
	MaxCachedPosts = 50
	// MaxCachedFeeds is the feeds table cap.
	MaxCachedFeeds = 10
)

// CacheStats reports current table sizes.
type CacheStats struct {
	PostCount int64 `json:"postCount"`
	FeedCount int64 `json:"feedCount"`
}

// CacheService is the offline read-through/write-through cache for posts and
// feeds. It is advisory by design: when the underlying store is missing or
// failing, reads miss and writes are dropped with a log line; callers never
// see an error from this service.
//
// Eviction is LRU by write time. Reads never renew a row's recency, so a
// post re-opened from cache is not "kept alive"; churn stays predictable.
type CacheService struct {
	posts repository.PostCacheRepository
	feeds repository.FeedCacheRepository

	postCap int
	feedCap int

	now    func() time.Time
	logger *slog.Logger
}

// NewCacheService creates a CacheService over the given repositories.
// Either repository may be nil when the store is unavailable; the service
// then degrades to a permanent miss.
func NewCacheService(posts repository.PostCacheRepository, feeds repository.FeedCacheRepository) *CacheService {
	return &CacheService{
		posts:   posts,
		feeds:   feeds,
		postCap: MaxCachedPosts,
		feedCap: MaxCachedFeeds,
		now:     time.Now,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the service.
func (s *CacheService) WithLogger(logger *slog.Logger) *CacheService {
	s.logger = logger
	return s
}

// WithClock injects the time source, for tests.
func (s *CacheService) WithClock(now func() time.Time) *CacheService {
	s.now = now
	return s
}

// WithCaps overrides the table caps, for tests.
func (s *CacheService) WithCaps(postCap, feedCap int) *CacheService {
	s.postCap = postCap
	s.feedCap = feedCap
	return s
}

// CachePost upserts a post under "<handle>/<rkey>", stamps its write time,
// and evicts past the cap. The eviction pass completes before returning.
func (s *CacheService) CachePost(ctx context.Context, handle, rkey string, entry, author, publication json.RawMessage, cid string, isOwnPost bool) {
	if s.posts == nil {
		s.logger.DebugContext(ctx, "post cache unavailable, dropping write")
		return
	}

	post := &models.CachedPost{
		Key:         models.PostKey(handle, rkey),
		Entry:       entry,
		Author:      author,
		Publication: publication,
		CachedAt:    s.now(),
		CID:         cid,
		IsOwnPost:   isOwnPost,
	}

	if err := s.posts.Upsert(ctx, post); err != nil {
		s.logger.WarnContext(ctx, "failed to cache post",
			slog.String("key", post.Key),
			slog.String("error", err.Error()))
		return
	}

	s.evictPosts(ctx)
}

// GetCachedPost returns the cached post or nil on any miss or failure.
func (s *CacheService) GetCachedPost(ctx context.Context, handle, rkey string) *models.CachedPost {
	if s.posts == nil {
		return nil
	}

	post, err := s.posts.GetByKey(ctx, models.PostKey(handle, rkey))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read cached post",
			slog.String("handle", handle),
			slog.String("rkey", rkey),
			slog.String("error", err.Error()))
		return nil
	}
	return post
}

// RemoveCachedPost deletes a single post from the cache.
func (s *CacheService) RemoveCachedPost(ctx context.Context, handle, rkey string) {
	if s.posts == nil {
		return
	}
	if err := s.posts.DeleteByKey(ctx, models.PostKey(handle, rkey)); err != nil {
		s.logger.WarnContext(ctx, "failed to remove cached post",
			slog.String("error", err.Error()))
	}
}

// CacheFeed upserts a feed snapshot under the caller-supplied key, stamps
// its write time, and evicts past the cap.
func (s *CacheService) CacheFeed(ctx context.Context, key string, posts json.RawMessage, cursor string) {
	if s.feeds == nil {
		s.logger.DebugContext(ctx, "feed cache unavailable, dropping write")
		return
	}

	feed := &models.CachedFeed{
		Key:      key,
		Posts:    posts,
		CachedAt: s.now(),
		Cursor:   cursor,
	}

	if err := s.feeds.Upsert(ctx, feed); err != nil {
		s.logger.WarnContext(ctx, "failed to cache feed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}

	s.evictFeeds(ctx)
}

// GetCachedFeed returns the cached feed or nil on any miss or failure.
func (s *CacheService) GetCachedFeed(ctx context.Context, key string) *models.CachedFeed {
	if s.feeds == nil {
		return nil
	}

	feed, err := s.feeds.GetByKey(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read cached feed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil
	}
	return feed
}

// Stats returns table sizes, zeroes on failure.
func (s *CacheService) Stats(ctx context.Context) CacheStats {
	stats := CacheStats{}
	if s.posts != nil {
		if n, err := s.posts.Count(ctx); err == nil {
			stats.PostCount = n
		} else {
			s.logger.WarnContext(ctx, "failed to count cached posts", slog.String("error", err.Error()))
		}
	}
	if s.feeds != nil {
		if n, err := s.feeds.Count(ctx); err == nil {
			stats.FeedCount = n
		} else {
			s.logger.WarnContext(ctx, "failed to count cached feeds", slog.String("error", err.Error()))
		}
	}
	return stats
}

// ClearAll empties both tables. Failures are logged, not surfaced.
func (s *CacheService) ClearAll(ctx context.Context) {
	if s.posts != nil {
		if err := s.posts.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to clear cached posts", slog.String("error", err.Error()))
		}
	}
	if s.feeds != nil {
		if err := s.feeds.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to clear cached feeds", slog.String("error", err.Error()))
		}
	}
}

// PruneOlderThan removes rows older than the retention cutoff from both
// tables. Used by the janitor; failures are logged, not surfaced.
func (s *CacheService) PruneOlderThan(ctx context.Context, retention time.Duration) {
	cutoff := s.now().Add(-retention)

	if s.posts != nil {
		if n, err := s.posts.DeleteOlderThan(ctx, cutoff); err != nil {
			s.logger.WarnContext(ctx, "failed to prune cached posts", slog.String("error", err.Error()))
		} else if n > 0 {
			s.logger.InfoContext(ctx, "pruned stale cached posts", slog.Int64("removed", n))
		}
	}
	if s.feeds != nil {
		if n, err := s.feeds.DeleteOlderThan(ctx, cutoff); err != nil {
			s.logger.WarnContext(ctx, "failed to prune cached feeds", slog.String("error", err.Error()))
		} else if n > 0 {
			s.logger.InfoContext(ctx, "pruned stale cached feeds", slog.Int64("removed", n))
		}
	}
}

// evictPosts deletes the oldest rows past the cap. n is bounded by cap+1
// under single-writer use, so the sort-and-batch approach stays cheap.
func (s *CacheService) evictPosts(ctx context.Context) {
	count, err := s.posts.Count(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count posts for eviction", slog.String("error", err.Error()))
		return
	}
	if over := int(count) - s.postCap; over > 0 {
		if err := s.posts.DeleteOldest(ctx, over); err != nil {
			s.logger.WarnContext(ctx, "failed to evict cached posts", slog.String("error", err.Error()))
		}
	}
}

// evictFeeds deletes the oldest rows past the cap.
func (s *CacheService) evictFeeds(ctx context.Context) {
	count, err := s.feeds.Count(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count feeds for eviction", slog.String("error", err.Error()))
		return
	}
	if over := int(count) - s.feedCap; over > 0 {
		if err := s.feeds.DeleteOldest(ctx, over); err != nil {
			s.logger.WarnContext(ctx, "failed to evict cached feeds", slog.String("error", err.Error()))
		}
	}
}
