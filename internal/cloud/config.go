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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the upstream data source, the cache, the snapshot archive, the refresh
// schedule, and the Pub/Sub topics.
//
// Structs:
//   - Upstream: Configuration for the REST data source.
//   - BigQueryDataSource: Configuration for the BigQuery data source.
//   - Storage: Configuration for the snapshot archive bucket.
//   - Cache: Configuration for the Redis cache.
//   - Refresh: Configuration for the background refresh workflow.
//   - Dashboard: Presentation limits.
//   - Telemetry: Exporter settings.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import "time"

// Source kinds accepted in `application.data_source`.
const (
	SourceHTTP     = "http"
	SourceBigQuery = "bigquery"
)

// Upstream represents the REST API that serves the dashboard datasets.
type Upstream struct {
	APIRoot           string `toml:"api_root"`            // Base URL, e.g. "https://covid.example.com/api".
	TimeoutInSeconds  int    `toml:"timeout_in_seconds"`  // Per-request timeout.
	RequestsPerSecond int    `toml:"requests_per_second"` // Client-side rate limit; 0 disables limiting.
	MaxRetries        int    `toml:"max_retries"`         // Retries on transport errors and 5xx responses.
	BackoffMillis     int    `toml:"backoff_millis"`      // Linear backoff step between retries.
}

// Timeout returns the per-request timeout, defaulting to ten seconds.
func (u Upstream) Timeout() time.Duration {
	if u.TimeoutInSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(u.TimeoutInSeconds) * time.Second
}

// BigQueryDataSource represents the configuration for the BigQuery data source.
type BigQueryDataSource struct {
	ProjectID   string `toml:"project_id"` // Project hosting the dataset, e.g. "bigquery-public-data".
	DatasetName string `toml:"dataset"`    // The name of the BigQuery dataset.
	Table       string `toml:"table"`      // The table holding per-location daily rows.
}

// Storage represents the configuration for the snapshot archive.
type Storage struct {
	SnapshotBucket string `toml:"snapshot_bucket"` // Bucket receiving refresh snapshots; empty disables archiving.
	SnapshotPrefix string `toml:"snapshot_prefix"` // Object name prefix inside the bucket.
}

// Cache represents the configuration for the Redis cache placed in front of
// the data source.
type Cache struct {
	Enabled    bool   `toml:"enabled"`
	Address    string `toml:"address"` // host:port of the Redis server.
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	Namespace  string `toml:"namespace"`   // Prefix applied to every key.
	TTLSeconds int    `toml:"ttl_seconds"` // Entry lifetime.
}

// TTL returns the cache entry lifetime, defaulting to ten minutes.
func (c Cache) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// Refresh configures the background dataset refresh.
type Refresh struct {
	IntervalSeconds             int `toml:"interval_seconds"`             // Ticker period; 0 disables the timer.
	RegionFetchTimeoutInSeconds int `toml:"region_fetch_timeout_seconds"` // Deadline for a lazily triggered region fetch.
}

// RegionFetchTimeout returns the lazy region fetch deadline, defaulting to thirty seconds.
func (r Refresh) RegionFetchTimeout() time.Duration {
	if r.RegionFetchTimeoutInSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.RegionFetchTimeoutInSeconds) * time.Second
}

// Dashboard holds presentation limits.
type Dashboard struct {
	MaxRegionTableRows int `toml:"max_region_table_rows"` // The region table is offered only below this many rows.
}

// Telemetry configures the OpenTelemetry exporters.
type Telemetry struct {
	Enabled bool `toml:"enabled"` // When false, no-op providers are installed.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		ListenAddress   string `toml:"listen_address"`    // Address the HTTP server binds, e.g. ":8080".
		LogLevel        string `toml:"log_level"`         // debug, info, warn or error.
		DataSource      string `toml:"data_source"`       // SourceHTTP or SourceBigQuery.
	} `toml:"application"`
	Upstream           Upstream                     `toml:"upstream"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"` // BigQuery data source configuration.
	Storage            Storage                      `toml:"storage"`               // Storage configuration.
	Cache              Cache                        `toml:"cache"`
	Refresh            Refresh                      `toml:"refresh"`
	Dashboard          Dashboard                    `toml:"dashboard"`
	Telemetry          Telemetry                    `toml:"telemetry"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g., "RefreshTopic").
}

// NewConfig is a constructor function that creates a new, initialized Config instance.
// The map is initialized so the loader can populate it.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
}
