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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/workflow"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/telemetry"
)

type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	source    services.DataSource
	store     *services.DatasetStore
	collector *telemetry.ResolveCollector
	refresh   *workflow.DatasetRefreshWorkflow
}

var state = &StateManager{}

// SetupOS defaults the configuration directory and runtime when the
// environment does not set them.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// newDataSource picks the configured source and puts the Redis cache in front
// of it when one is connected.
func newDataSource(config *cloud.Config, clients *cloud.ServiceClients) (services.DataSource, error) {
	var source services.DataSource
	switch config.Application.DataSource {
	case cloud.SourceBigQuery:
		source = &services.BigQuerySource{
			BigqueryClient: clients.BigQueryClient,
			ProjectID:      config.BigQueryDataSource.ProjectID,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			Table:          config.BigQueryDataSource.Table,
		}
	case cloud.SourceHTTP, "":
		if config.Upstream.APIRoot == "" {
			return nil, fmt.Errorf("upstream.api_root is required for the %q source", cloud.SourceHTTP)
		}
		source = services.NewHTTPSource(clients.HTTPClient, config.Upstream.APIRoot)
	default:
		return nil, fmt.Errorf("unknown data source %q", config.Application.DataSource)
	}

	if clients.RedisClient != nil {
		source = services.NewCachedSource(source, clients.RedisClient, config.Cache.Namespace, config.Cache.TTL())
	}
	return source, nil
}

func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	state.source, err = newDataSource(config, cloudClients)
	if err != nil {
		panic(err)
	}

	state.collector, err = telemetry.NewResolveCollector(nil)
	if err != nil {
		panic(err)
	}

	state.store = services.NewDatasetStore(state.source, config.Refresh.RegionFetchTimeout())
	// The dashboard answers 202 until the first load lands.
	state.store.RequestCountries()

	state.refresh = workflow.NewDatasetRefreshWorkflow(config, cloudClients, state.source, state.store, state.collector)
	state.refresh.StartTimer(ctx)

	SetupListeners(config, cloudClients, ctx)
	slog.Info("state initialized", "data_source", config.Application.DataSource, "cache", cloudClients.RedisClient != nil)
}
