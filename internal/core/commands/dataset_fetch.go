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
// command that pulls fresh datasets from the configured DataSource.
//
// Logic Flow:
//  1. Read the model.RefreshRequest produced by RefreshTriggerReader.
//  2. If the source sits behind a cache, drop the entries of the requested
//     scope first so the fetch reaches the upstream. A regions refresh leaves
//     the cached config and country list alone.
//  3. For a countries refresh, fetch the dashboard config and the country
//     list, then refetch every region dataset that is already loaded.
//     For a regions refresh, fetch the one country's dataset.
//  4. Emit a model.DatasetSnapshot for the upload and publish commands.
package commands

import (
	goctx "context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/cor"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
)

// FetchObserver receives the duration of each fetch.
// telemetry.ResolveCollector satisfies it.
type FetchObserver interface {
	ObserveFetch(scope string, d time.Duration, err error)
}

// LoadedRegions lists the countries whose region datasets are held in memory.
// services.DatasetStore satisfies it.
type LoadedRegions interface {
	LoadedRegionISOs() []string
}

// DatasetFetch fetches the datasets named by a refresh request.
type DatasetFetch struct {
	cor.BaseCommand
	source   services.DataSource
	loaded   LoadedRegions
	observer FetchObserver
	now      func() time.Time
}

// NewDatasetFetch is the constructor for the DatasetFetch command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - source: The upstream the datasets are read from.
//   - loaded: Source of the region datasets to refetch on a countries refresh. May be nil.
//   - observer: Receives fetch durations. May be nil.
func NewDatasetFetch(name string, source services.DataSource, loaded LoadedRegions, observer FetchObserver) *DatasetFetch {
	return &DatasetFetch{
		BaseCommand: *cor.NewBaseCommand(name),
		source:      source,
		loaded:      loaded,
		observer:    observer,
		now:         time.Now,
	}
}

func (c *DatasetFetch) Execute(context cor.Context) {
	req, ok := context.Get(c.GetInputParam()).(*model.RefreshRequest)
	if !ok || req == nil {
		c.Failed(context, fmt.Errorf("dataset fetch expects a refresh request, got %T", context.Get(c.GetInputParam())))
		return
	}

	ctx, span := c.GetTracer().Start(context.GetContext(), "dataset-fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("refresh.scope", string(req.Scope)),
		attribute.String("refresh.country", req.CountryISOA3),
	)

	snap := &model.DatasetSnapshot{
		RunID:     uuid.New().String(),
		FetchedAt: c.now().UTC(),
		Scope:     req.Scope,
		Regions:   make(map[string]*model.RegionDataset),
	}

	var regionISOs []string
	switch req.Scope {
	case model.RefreshRegions:
		regionISOs = []string{req.CountryISOA3}
	default:
		if c.loaded != nil {
			regionISOs = c.loaded.LoadedRegionISOs()
		}
	}

	if inv, ok := c.source.(services.Invalidator); ok {
		if err := inv.Invalidate(ctx, req.Scope, regionISOs...); err != nil {
			slog.WarnContext(ctx, "failed to invalidate cached datasets", "run_id", snap.RunID, "error", err)
		}
	}

	start := time.Now()
	err := c.fetch(ctx, snap, req, regionISOs)
	if c.observer != nil {
		c.observer.ObserveFetch(string(req.Scope), time.Since(start), err)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.Failed(context, err)
		return
	}

	slog.InfoContext(ctx, "fetched datasets",
		"run_id", snap.RunID,
		"scope", snap.Scope,
		"countries", len(snap.Countries),
		"region_datasets", len(snap.Regions))
	c.Succeeded(context)
	context.Add(c.GetOutputParam(), snap)
}

func (c *DatasetFetch) fetch(ctx goctx.Context, snap *model.DatasetSnapshot, req *model.RefreshRequest, regionISOs []string) error {
	if req.Scope == model.RefreshRegions {
		dataset, err := c.source.Regions(ctx, req.CountryISOA3)
		if err != nil {
			return fmt.Errorf("failed to fetch regions of %s: %w", req.CountryISOA3, err)
		}
		snap.Regions[req.CountryISOA3] = dataset
		return nil
	}

	countries, err := c.source.Countries(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch countries: %w", err)
	}
	snap.Countries = countries

	// The header figures are optional; the previous config stays published.
	if config, err := c.source.Config(ctx); err != nil {
		slog.WarnContext(ctx, "failed to fetch dashboard config", "run_id", snap.RunID, "error", err)
	} else {
		snap.Config = config
	}

	for _, iso := range regionISOs {
		dataset, err := c.source.Regions(ctx, iso)
		if err != nil {
			if errors.Is(err, services.ErrUnknownCountry) {
				slog.InfoContext(ctx, "country no longer has regions", "country", iso)
			} else {
				slog.WarnContext(ctx, "failed to refresh regions", "country", iso, "error", err)
			}
			continue
		}
		snap.Regions[iso] = dataset
	}
	return nil
}
