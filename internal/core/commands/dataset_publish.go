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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// last command of the refresh workflow, which swaps the fetched datasets into
// the store read by the dashboard handlers.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/cor"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
)

// RegionGauge tracks the number of loaded region datasets.
// telemetry.ResolveCollector satisfies it.
type RegionGauge interface {
	SetRegionDatasets(n int)
}

// DatasetPublish applies a snapshot to a DatasetStore.
type DatasetPublish struct {
	cor.BaseCommand
	store *services.DatasetStore
	gauge RegionGauge
}

// NewDatasetPublish is the constructor for the DatasetPublish command. gauge may be nil.
func NewDatasetPublish(name string, store *services.DatasetStore, gauge RegionGauge) *DatasetPublish {
	return &DatasetPublish{BaseCommand: *cor.NewBaseCommand(name), store: store, gauge: gauge}
}

func (c *DatasetPublish) Execute(context cor.Context) {
	snap, ok := context.Get(c.GetInputParam()).(*model.DatasetSnapshot)
	if !ok || snap == nil {
		c.Failed(context, fmt.Errorf("dataset publish expects a dataset snapshot, got %T", context.Get(c.GetInputParam())))
		return
	}

	c.store.ApplySnapshot(snap)
	stats := c.store.Stats()
	if c.gauge != nil {
		c.gauge.SetRegionDatasets(stats.RegionDatasets)
	}

	slog.InfoContext(context.GetContext(), "published datasets",
		"run_id", snap.RunID,
		"countries", stats.Countries,
		"region_datasets", stats.RegionDatasets)
	c.Succeeded(context)
	context.Add(c.GetOutputParam(), snap)
}
