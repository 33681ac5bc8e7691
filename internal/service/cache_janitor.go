package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CacheJanitor periodically prunes stale cache rows on a cron schedule.
// This is belt-and-braces on top of LRU eviction: eviction bounds row
// count, the janitor bounds row age.
type CacheJanitor struct {
	cache     *CacheService
	schedule  string
	retention time.Duration
	logger    *slog.Logger
	cron      *cron.Cron
}

// NewCacheJanitor creates a janitor. schedule is a standard 5-field cron
// expression; retention is the maximum row age.
func NewCacheJanitor(cache *CacheService, schedule string, retention time.Duration) *CacheJanitor {
	return &CacheJanitor{
		cache:     cache,
		schedule:  schedule,
		retention: retention,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger for the janitor.
func (j *CacheJanitor) WithLogger(logger *slog.Logger) *CacheJanitor {
	j.logger = logger
	return j
}

// Start registers the schedule and begins running. Returns an error for an
// invalid cron expression.
func (j *CacheJanitor) Start() error {
	c := cron.New()
	_, err := c.AddFunc(j.schedule, func() {
		j.cache.PruneOlderThan(context.Background(), j.retention)
	})
	if err != nil {
		return fmt.Errorf("registering cache janitor schedule: %w", err)
	}

	j.cron = c
	c.Start()
	j.logger.Info("cache janitor started",
		slog.String("schedule", j.schedule),
		slog.Duration("retention", j.retention))
	return nil
}

// Stop halts the schedule. Safe to call when never started.
func (j *CacheJanitor) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}
