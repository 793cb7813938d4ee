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

// Package cloud provides components for interacting with Google Cloud services.
// This file initializes and holds every client the service talks to. A single
// ServiceClients value is built at startup and passed to the workflows and
// the API layer.
//
// Clients are only created for the features the configuration enables:
//   - BigQuery when `application.data_source` is "bigquery".
//   - Storage when `storage.snapshot_bucket` is set.
//   - Pub/Sub when at least one topic subscription is configured.
//   - Redis when `cache.enabled` is true.
//
// Unused clients stay nil.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
)

// ServiceClients is the container for all external clients.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	BigQueryClient  *bigquery.Client
	RedisClient     redis.UniversalClient
	HTTPClient      *QuotaAwareHTTPClient      // Client for the upstream REST API.
	PubSubListeners map[string]*PubSubListener // Keyed by the logical name from the config.
}

// Close shuts down every client that was opened.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
}

// NewCloudServiceClients creates the clients the configuration asks for.
// On error every client opened so far is closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	clients := &ServiceClients{
		HTTPClient:      NewQuotaAwareHTTPClient(config.Upstream),
		PubSubListeners: make(map[string]*PubSubListener),
	}
	if err := clients.open(ctx, config); err != nil {
		clients.Close()
		return nil, err
	}
	return clients, nil
}

func (c *ServiceClients) open(ctx context.Context, config *Config) (err error) {
	if config.Storage.SnapshotBucket != "" {
		if c.StorageClient, err = storage.NewClient(ctx); err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	if len(config.TopicSubscriptions) > 0 {
		if c.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return fmt.Errorf("failed to create pubsub client: %w", err)
		}
		// Commands are attached once the workflows are built.
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(c.PubsubClient, values.Name, nil)
			if err != nil {
				return err
			}
			c.PubSubListeners[subKey] = listener
		}
	}

	if config.Application.DataSource == SourceBigQuery {
		if c.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return fmt.Errorf("failed to create bigquery client: %w", err)
		}
	}

	if config.Cache.Enabled {
		c.RedisClient = NewRedisClient(config.Cache)
		if err = c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", config.Cache.Address, err)
		}
	}
	return nil
}

// NewRedisClient builds the cache client.
func NewRedisClient(cfg Cache) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Address},
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
