// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services contains the business logic of the dashboard.
// This file, `cache.go`, defines CachedSource, a DataSource decorator that
// keeps upstream responses in Redis so that several replicas of the service
// share one fetch per TTL window.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// Invalidator is implemented by sources that can drop cached entries.
type Invalidator interface {
	// Invalidate drops the region entries of the given countries. A countries
	// scope also drops the config and country list entries.
	Invalidate(ctx context.Context, scope model.RefreshScope, countryISOA3 ...string) error
}

// CachedSource wraps a DataSource with a Redis read-through cache. Keys are
// "<namespace>:config", "<namespace>:countries" and "<namespace>:regions:<ISO>".
// Redis failures are logged and the call falls through to the wrapped source.
type CachedSource struct {
	Source    DataSource
	Client    redis.UniversalClient
	Namespace string
	TTL       time.Duration
}

// NewCachedSource wraps source.
func NewCachedSource(source DataSource, client redis.UniversalClient, namespace string, ttl time.Duration) *CachedSource {
	return &CachedSource{Source: source, Client: client, Namespace: namespace, TTL: ttl}
}

func (c *CachedSource) key(parts ...string) string {
	return c.Namespace + ":" + strings.Join(parts, ":")
}

func (c *CachedSource) Config(ctx context.Context) (*model.DashboardConfig, error) {
	return getOrLoad(ctx, c, c.key("config"), func(ctx context.Context) (*model.DashboardConfig, error) {
		return c.Source.Config(ctx)
	})
}

func (c *CachedSource) Countries(ctx context.Context) ([]model.Country, error) {
	return getOrLoad(ctx, c, c.key("countries"), c.Source.Countries)
}

func (c *CachedSource) Regions(ctx context.Context, countryISOA3 string) (*model.RegionDataset, error) {
	iso := strings.ToUpper(countryISOA3)
	return getOrLoad(ctx, c, c.key("regions", iso), func(ctx context.Context) (*model.RegionDataset, error) {
		return c.Source.Regions(ctx, iso)
	})
}

func (c *CachedSource) Invalidate(ctx context.Context, scope model.RefreshScope, countryISOA3 ...string) error {
	var keys []string
	if scope != model.RefreshRegions {
		keys = append(keys, c.key("config"), c.key("countries"))
	}
	for _, iso := range countryISOA3 {
		keys = append(keys, c.key("regions", strings.ToUpper(iso)))
	}
	// Keys are deleted one by one so the call also works against a cluster,
	// where a multi-key DEL must stay within one hash slot.
	var errs []error
	for _, k := range keys {
		if err := c.Client.Del(ctx, k).Err(); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

func getOrLoad[T any](ctx context.Context, c *CachedSource, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		decodeErr := json.Unmarshal(raw, &out)
		if decodeErr == nil {
			return out, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", decodeErr)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "cache read failed, falling back to source", "key", key, "error", err)
	}

	out, err = load(ctx)
	if err != nil {
		return out, err
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode cache entry", "key", key, "error", err)
		return out, nil
	}
	if err := c.Client.Set(ctx, key, encoded, c.TTL).Err(); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return out, nil
}
