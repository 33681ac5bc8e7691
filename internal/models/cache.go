// Package models defines GORM database models for inkhorn entities.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CachedPost is one offline-cached post row. The composite key
// "<handle>/<rkey>" is the natural identifier; writes upsert by it.
type CachedPost struct {
	// Key is "<handle>/<rkey>".
	Key string `gorm:"primaryKey;type:varchar(512)" json:"key"`

	// Entry, Author, and Publication are opaque record blobs owned by the
	// data-fetching layer; the cache never interprets them.
	Entry       json.RawMessage `gorm:"type:text" json:"entry"`
	Author      json.RawMessage `gorm:"type:text" json:"author"`
	Publication json.RawMessage `gorm:"type:text" json:"publication"`

	// CachedAt is the write timestamp; eviction recency is by write, never
	// by read.
	CachedAt time.Time `gorm:"index" json:"cachedAt"`

	// CID is the content identifier of the cached record version.
	CID string `json:"cid"`

	IsOwnPost bool `json:"isOwnPost"`
}

// TableName overrides the GORM table name.
func (CachedPost) TableName() string {
	return "cached_posts"
}

// PostKey builds the composite cache key for a post.
func PostKey(handle, rkey string) string {
	return fmt.Sprintf("%s/%s", handle, rkey)
}

// CachedFeed is one offline-cached feed snapshot, keyed by a logical feed
// name such as "recent" or "author:<handle>".
type CachedFeed struct {
	Key string `gorm:"primaryKey;type:varchar(255)" json:"key"`

	// Posts is the ordered post list as an opaque JSON array.
	Posts json.RawMessage `gorm:"type:text" json:"posts"`

	CachedAt time.Time `gorm:"index" json:"cachedAt"`

	// Cursor is the pagination cursor for resuming the feed, when present.
	Cursor string `json:"cursor,omitempty"`
}

// TableName overrides the GORM table name.
func (CachedFeed) TableName() string {
	return "cached_feeds"
}
