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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements the
// workflow that refreshes the datasets served by the dashboard.
//
// The same chain is run from two places: a ticker started by StartTimer, and
// the Pub/Sub listener bound to the refresh topic.
//
//  1. RefreshTriggerReader parses the trigger message.
//  2. DatasetFetch reads the requested datasets from the DataSource.
//  3. SnapshotUpload archives the snapshot, when a bucket is configured.
//  4. DatasetPublish swaps the snapshot into the DatasetStore.
package workflow

import (
	goctx "context"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/commands"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/cor"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/telemetry"
)

// DatasetRefreshWorkflow refreshes the DatasetStore from its DataSource.
type DatasetRefreshWorkflow struct {
	cor.BaseCommand
	config        *cloud.Config
	storageClient *storage.Client
	source        services.DataSource
	store         *services.DatasetStore
	collector     *telemetry.ResolveCollector
	chain         cor.Chain
}

// NewDatasetRefreshWorkflow is the constructor for the refresh workflow.
//
// Inputs:
//   - config: The application configuration.
//   - serviceClients: Supplies the storage client used for snapshot archiving. May be nil.
//   - source: The DataSource datasets are read from.
//   - store: The store the dashboard reads.
//   - collector: Receives fetch metrics. May be nil.
func NewDatasetRefreshWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	source services.DataSource,
	store *services.DatasetStore,
	collector *telemetry.ResolveCollector) *DatasetRefreshWorkflow {

	out := &DatasetRefreshWorkflow{
		BaseCommand: *cor.NewBaseCommand("dataset-refresh-workflow"),
		config:      config,
		source:      source,
		store:       store,
		collector:   collector,
	}
	if serviceClients != nil {
		out.storageClient = serviceClients.StorageClient
	}
	out.initializeChain()
	return out
}

func (w *DatasetRefreshWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewRefreshTriggerReader("refresh-trigger"))
	out.AddCommand(commands.NewDatasetFetch("dataset-fetch", w.source, w.store, w.collector))
	out.AddCommand(commands.NewSnapshotUpload("snapshot-upload", w.storageClient,
		w.config.Storage.SnapshotBucket, w.config.Storage.SnapshotPrefix))
	out.AddCommand(commands.NewDatasetPublish("dataset-publish", w.store, w.collector))
	w.chain = out
}

// Execute runs the chain against a context whose CtxIn holds the trigger message.
func (w *DatasetRefreshWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Refresh runs one refresh for the given trigger message and returns the
// joined errors of every failed command.
func (w *DatasetRefreshWorkflow) Refresh(ctx goctx.Context, trigger string) error {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, trigger)
	w.Execute(chainCtx)
	return cor.JoinedErrors(chainCtx)
}

// StartTimer refreshes the countries every `refresh.interval_seconds` until
// ctx is cancelled. A non-positive interval disables the timer.
func (w *DatasetRefreshWorkflow) StartTimer(ctx goctx.Context) {
	if w.config.Refresh.IntervalSeconds <= 0 {
		slog.Info("periodic refresh disabled")
		return
	}
	interval := time.Duration(w.config.Refresh.IntervalSeconds) * time.Second
	tracer := otel.Tracer("dataset-refresh")
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				traceCtx, span := tracer.Start(ctx, "scheduled-refresh")
				if err := w.Refresh(traceCtx, ""); err != nil {
					span.SetStatus(codes.Error, "failed to refresh datasets")
					slog.ErrorContext(traceCtx, "scheduled refresh failed", "error", err)
				} else {
					span.SetStatus(codes.Ok, "refreshed datasets")
				}
				span.End()
			case <-ctx.Done():
				return
			}
		}
	}()
}
