package handlers

import (
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkhorn/inkhorn/internal/models"
	"github.com/inkhorn/inkhorn/internal/service"
)

// CacheHandler handles offline cache endpoints. The cache is advisory:
// writes never fail, and a miss is a 404 rather than an error.
type CacheHandler struct {
	cache *service.CacheService
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(cache *service.CacheService) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// Register registers the cache routes with the Huma API.
func (h *CacheHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getCacheStats",
		Method:      "GET",
		Path:        "/api/v1/cache/stats",
		Summary:     "Cache statistics",
		Tags:        []string{"Cache"},
	}, h.GetStats)

	huma.Register(api, huma.Operation{
		OperationID: "clearCache",
		Method:      "DELETE",
		Path:        "/api/v1/cache",
		Summary:     "Clear the cache",
		Description: "Removes every cached post and feed",
		Tags:        []string{"Cache"},
	}, h.ClearCache)

	huma.Register(api, huma.Operation{
		OperationID: "putCachedPost",
		Method:      "PUT",
		Path:        "/api/v1/cache/posts/{handle}/{rkey}",
		Summary:     "Cache a post",
		Tags:        []string{"Cache"},
	}, h.PutPost)

	huma.Register(api, huma.Operation{
		OperationID: "getCachedPost",
		Method:      "GET",
		Path:        "/api/v1/cache/posts/{handle}/{rkey}",
		Summary:     "Read a cached post",
		Tags:        []string{"Cache"},
	}, h.GetPost)

	huma.Register(api, huma.Operation{
		OperationID: "deleteCachedPost",
		Method:      "DELETE",
		Path:        "/api/v1/cache/posts/{handle}/{rkey}",
		Summary:     "Remove a cached post",
		Tags:        []string{"Cache"},
	}, h.DeletePost)

	huma.Register(api, huma.Operation{
		OperationID: "putCachedFeed",
		Method:      "PUT",
		Path:        "/api/v1/cache/feeds/{key}",
		Summary:     "Cache a feed snapshot",
		Tags:        []string{"Cache"},
	}, h.PutFeed)

	huma.Register(api, huma.Operation{
		OperationID: "getCachedFeed",
		Method:      "GET",
		Path:        "/api/v1/cache/feeds/{key}",
		Summary:     "Read a cached feed snapshot",
		Tags:        []string{"Cache"},
	}, h.GetFeed)
}

// GetStatsInput is the input for cache statistics.
type GetStatsInput struct{}

// GetStatsOutput is the output for cache statistics.
type GetStatsOutput struct {
	Body service.CacheStats
}

// GetStats returns current cache table sizes.
func (h *CacheHandler) GetStats(ctx context.Context, input *GetStatsInput) (*GetStatsOutput, error) {
	return &GetStatsOutput{Body: h.cache.Stats(ctx)}, nil
}

// ClearCacheInput is the input for clearing the cache.
type ClearCacheInput struct{}

// ClearCacheOutput is the output for clearing the cache.
type ClearCacheOutput struct {
	Body service.CacheStats
}

// ClearCache removes every cached row and returns the resulting stats.
func (h *CacheHandler) ClearCache(ctx context.Context, input *ClearCacheInput) (*ClearCacheOutput, error) {
	h.cache.ClearAll(ctx)
	return &ClearCacheOutput{Body: h.cache.Stats(ctx)}, nil
}

// PutPostInput is the input for caching a post.
type PutPostInput struct {
	Handle string `path:"handle" doc:"Author handle"`
	Rkey   string `path:"rkey" doc:"Record key"`
	Body   struct {
		Entry       json.RawMessage `json:"entry" doc:"Post record blob"`
		Author      json.RawMessage `json:"author,omitempty" doc:"Author record blob"`
		Publication json.RawMessage `json:"publication,omitempty" doc:"Publication record blob"`
		CID         string          `json:"cid,omitempty" doc:"Content identifier of this record version"`
		IsOwnPost   bool            `json:"isOwnPost,omitempty"`
	}
}

// PutPostOutput is the output for caching a post.
type PutPostOutput struct {
	Body struct {
		Key string `json:"key"`
	}
}

// PutPost upserts one post into the cache.
func (h *CacheHandler) PutPost(ctx context.Context, input *PutPostInput) (*PutPostOutput, error) {
	h.cache.CachePost(ctx, input.Handle, input.Rkey,
		input.Body.Entry, input.Body.Author, input.Body.Publication,
		input.Body.CID, input.Body.IsOwnPost)

	out := &PutPostOutput{}
	out.Body.Key = models.PostKey(input.Handle, input.Rkey)
	return out, nil
}

// GetPostInput is the input for reading a cached post.
type GetPostInput struct {
	Handle string `path:"handle"`
	Rkey   string `path:"rkey"`
}

// GetPostOutput is the output for reading a cached post.
type GetPostOutput struct {
	Body models.CachedPost
}

// GetPost returns one cached post, or 404 on a miss.
func (h *CacheHandler) GetPost(ctx context.Context, input *GetPostInput) (*GetPostOutput, error) {
	post := h.cache.GetCachedPost(ctx, input.Handle, input.Rkey)
	if post == nil {
		return nil, huma.Error404NotFound("post not cached")
	}
	return &GetPostOutput{Body: *post}, nil
}

// DeletePostInput is the input for removing a cached post.
type DeletePostInput struct {
	Handle string `path:"handle"`
	Rkey   string `path:"rkey"`
}

// DeletePostOutput is the output for removing a cached post.
type DeletePostOutput struct{}

// DeletePost removes one cached post. Removing an absent post is a no-op.
func (h *CacheHandler) DeletePost(ctx context.Context, input *DeletePostInput) (*DeletePostOutput, error) {
	h.cache.RemoveCachedPost(ctx, input.Handle, input.Rkey)
	return &DeletePostOutput{}, nil
}

// PutFeedInput is the input for caching a feed snapshot.
type PutFeedInput struct {
	Key  string `path:"key" doc:"Logical feed name, e.g. recent or author:<handle>"`
	Body struct {
		Posts  json.RawMessage `json:"posts" doc:"Ordered post list as an opaque JSON array"`
		Cursor string          `json:"cursor,omitempty" doc:"Pagination cursor for resuming the feed"`
	}
}

// PutFeedOutput is the output for caching a feed snapshot.
type PutFeedOutput struct {
	Body struct {
		Key string `json:"key"`
	}
}

// PutFeed upserts one feed snapshot into the cache.
func (h *CacheHandler) PutFeed(ctx context.Context, input *PutFeedInput) (*PutFeedOutput, error) {
	h.cache.CacheFeed(ctx, input.Key, input.Body.Posts, input.Body.Cursor)

	out := &PutFeedOutput{}
	out.Body.Key = input.Key
	return out, nil
}

// GetFeedInput is the input for reading a cached feed.
type GetFeedInput struct {
	Key string `path:"key"`
}

// GetFeedOutput is the output for reading a cached feed.
type GetFeedOutput struct {
	Body models.CachedFeed
}

// GetFeed returns one cached feed snapshot, or 404 on a miss.
func (h *CacheHandler) GetFeed(ctx context.Context, input *GetFeedInput) (*GetFeedOutput, error) {
	feed := h.cache.GetCachedFeed(ctx, input.Key)
	if feed == nil {
		return nil, huma.Error404NotFound("feed not cached")
	}
	return &GetFeedOutput{Body: *feed}, nil
}
