// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides a Valkey-backed cache for the catalog overview.
// The home page aggregates featured tools and per-category previews from
// several queries; the assembled snapshot is cached so repeat visits skip
// the database entirely. Admin writes invalidate the snapshot.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"toolhub/internal/models"
)

const (
	// homeKey is the Valkey key for the cached home snapshot.
	homeKey = "catalog:home"

	// DefaultTTL bounds staleness even if an invalidation is missed.
	DefaultTTL = 5 * time.Minute
)

// HomeSnapshot is the aggregated data behind the signed-in home page.
type HomeSnapshot struct {
	Featured   []models.Tool         `json:"featured"`
	Categories []models.ToolCategory `json:"categories"`
}

// Catalog caches catalog snapshots in Valkey. All methods degrade
// gracefully: cache errors are logged and treated as misses.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog creates a catalog cache backed by the given Valkey client.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Catalog{client: client, ttl: ttl}
}

// GetHome retrieves the cached home snapshot. Returns false on miss.
func (c *Catalog) GetHome(ctx context.Context) (*HomeSnapshot, bool) {
	payload, err := c.client.Get(ctx, homeKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "error", err)
		return nil, false
	}

	var snap HomeSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		slog.Warn("catalog cache unmarshal error", "error", err)
		return nil, false
	}
	return &snap, true
}

// SetHome stores the home snapshot with the configured TTL.
func (c *Catalog) SetHome(ctx context.Context, snap *HomeSnapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		slog.Warn("catalog cache marshal error", "error", err)
		return
	}
	if err := c.client.Set(ctx, homeKey, payload, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "error", err)
	}
}

// Invalidate drops the cached snapshot. Called after any tool or
// category write.
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, homeKey).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "error", err)
		return
	}
	slog.Debug("catalog cache invalidated")
}
