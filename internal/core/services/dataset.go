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
// This file, `dataset.go`, defines DatasetStore, the in-memory home of the
// country list and of the lazily fetched region datasets.
//
// Logic Flow:
//  1. Readers take immutable snapshots: the country slice and the region
//     datasets are replaced on refresh, never mutated in place.
//  2. RequestRegions and RequestCountries start a background fetch and return
//     immediately. Concurrent requests for the same key share one upstream call.
//  3. A failed fetch is remembered until the next Take*Error call, which
//     reports it once and clears it so the following request retries.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

type regionEntry struct {
	dataset *model.RegionDataset
	err     error
}

// StoreStats summarizes what the store currently holds.
type StoreStats struct {
	Countries      int       `json:"countries"`
	RegionDatasets int       `json:"region_datasets"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// DatasetStore holds the datasets served by the dashboard. It is safe for
// concurrent use.
type DatasetStore struct {
	source       DataSource
	fetchTimeout time.Duration
	group        singleflight.Group

	mu           sync.RWMutex
	config       *model.DashboardConfig
	countries    []model.Country
	countriesErr error
	regions      map[string]*regionEntry
	loadedAt     time.Time
}

// NewDatasetStore creates an empty store. fetchTimeout bounds the background
// fetches started by RequestRegions and RequestCountries.
func NewDatasetStore(source DataSource, fetchTimeout time.Duration) *DatasetStore {
	return &DatasetStore{
		source:       source,
		fetchTimeout: fetchTimeout,
		regions:      make(map[string]*regionEntry),
	}
}

func normalizeISO(iso string) string {
	return strings.ToUpper(strings.TrimSpace(iso))
}

// Load fetches the dashboard config and the country list and publishes them.
// A failed config fetch does not prevent the country list from being published.
func (s *DatasetStore) Load(ctx context.Context) error {
	_, err, _ := s.group.Do("countries", func() (interface{}, error) {
		return nil, s.load(ctx)
	})
	return err
}

func (s *DatasetStore) load(ctx context.Context) error {
	countries, err := s.source.Countries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load countries: %w", err)
	}
	config, cfgErr := s.source.Config(ctx)
	if cfgErr != nil {
		slog.WarnContext(ctx, "failed to load dashboard config", "error", cfgErr)
	}
	s.ApplySnapshot(&model.DatasetSnapshot{
		Scope:     model.RefreshCountries,
		FetchedAt: time.Now(),
		Config:    config,
		Countries: countries,
	})
	if cfgErr != nil {
		return fmt.Errorf("failed to load dashboard config: %w", cfgErr)
	}
	return nil
}

// Countries returns the current country list. The slice must not be modified.
func (s *DatasetStore) Countries() []model.Country {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countries
}

// Config returns the current dashboard config, or nil before the first load.
func (s *DatasetStore) Config() *model.DashboardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Regions returns the region dataset of a country if it has been loaded.
// It satisfies RegionLookup.
func (s *DatasetStore) Regions(countryISOA3 string) (*model.RegionDataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.regions[normalizeISO(countryISOA3)]
	if !ok || entry.dataset == nil {
		return nil, false
	}
	return entry.dataset, true
}

// FetchRegions fetches and publishes the region dataset of a country.
// Concurrent calls for the same country share one upstream request.
func (s *DatasetStore) FetchRegions(ctx context.Context, countryISOA3 string) (*model.RegionDataset, error) {
	return s.fetchRegions(ctx, normalizeISO(countryISOA3), false)
}

func (s *DatasetStore) fetchRegions(ctx context.Context, iso string, onlyMissing bool) (*model.RegionDataset, error) {
	v, err, _ := s.group.Do("regions:"+iso, func() (interface{}, error) {
		if onlyMissing {
			if dataset, ok := s.Regions(iso); ok {
				return dataset, nil
			}
		}
		dataset, err := s.source.Regions(ctx, iso)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			// A dataset loaded earlier is kept; the error is still reported once.
			entry := s.regions[iso]
			if entry == nil {
				entry = &regionEntry{}
				s.regions[iso] = entry
			}
			entry.err = err
			return nil, err
		}
		s.regions[iso] = &regionEntry{dataset: dataset}
		return dataset, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.RegionDataset), nil
}

// RequestRegions starts a background fetch of a country's regions unless the
// dataset is already loaded. It never blocks.
func (s *DatasetStore) RequestRegions(countryISOA3 string) {
	iso := normalizeISO(countryISOA3)
	if _, ok := s.Regions(iso); ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		if _, err := s.fetchRegions(ctx, iso, true); err != nil {
			slog.Error("region fetch failed", "country_iso_a3", iso, "error", err)
		}
	}()
}

// RequestCountries starts a background load of the country list. It never blocks.
func (s *DatasetStore) RequestCountries() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		if err := s.Load(ctx); err != nil {
			slog.Error("country fetch failed", "error", err)
			s.mu.Lock()
			if len(s.countries) == 0 {
				s.countriesErr = err
			}
			s.mu.Unlock()
		}
	}()
}

// TakeRegionError returns the last region fetch error of a country and clears it.
func (s *DatasetStore) TakeRegionError(countryISOA3 string) error {
	iso := normalizeISO(countryISOA3)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.regions[iso]
	if !ok || entry.err == nil {
		return nil
	}
	err := entry.err
	if entry.dataset == nil {
		delete(s.regions, iso)
	} else {
		entry.err = nil
	}
	return err
}

// TakeCountriesError returns the last country list error and clears it.
func (s *DatasetStore) TakeCountriesError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.countriesErr
	s.countriesErr = nil
	return err
}

// ApplySnapshot publishes the datasets carried by snap. Nil parts are left unchanged.
func (s *DatasetStore) ApplySnapshot(snap *model.DatasetSnapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Config != nil {
		s.config = snap.Config
	}
	if snap.Countries != nil {
		countries := make([]model.Country, len(snap.Countries))
		copy(countries, snap.Countries)
		s.countries = countries
		s.countriesErr = nil
	}
	for iso, dataset := range snap.Regions {
		if dataset != nil {
			s.regions[normalizeISO(iso)] = &regionEntry{dataset: dataset}
		}
	}
	s.loadedAt = snap.FetchedAt
}

// LoadedRegionISOs returns the sorted codes of every loaded region dataset.
func (s *DatasetStore) LoadedRegionISOs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.regions))
	for iso, entry := range s.regions {
		if entry.dataset != nil {
			out = append(out, iso)
		}
	}
	sort.Strings(out)
	return out
}

// Stats summarizes the store.
func (s *DatasetStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, entry := range s.regions {
		if entry.dataset != nil {
			n++
		}
	}
	return StoreStats{Countries: len(s.countries), RegionDatasets: n, LoadedAt: s.loadedAt}
}

// IsUnknownCountry reports whether err means the upstream has no regions for the country.
func IsUnknownCountry(err error) bool {
	return errors.Is(err, ErrUnknownCountry)
}
