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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the structs that only live while a
// dataset refresh workflow runs. They carry the refresh request and the
// fetched data between the commands of the chain.
package model

import "time"

// RefreshScope selects what a refresh run fetches.
type RefreshScope string

const (
	// RefreshCountries refetches the dashboard config, the country list, and the
	// region datasets that are already loaded.
	RefreshCountries RefreshScope = "countries"
	// RefreshRegions refetches the region dataset of a single country.
	RefreshRegions RefreshScope = "regions"
)

// RefreshRequest is the parsed form of a refresh trigger message.
type RefreshRequest struct {
	Scope        RefreshScope `json:"scope"`
	CountryISOA3 string       `json:"country_iso_a3,omitempty"` // Required for RefreshRegions.
}

// DatasetSnapshot is everything fetched by one refresh run. Config and
// Countries are nil for a regions-only refresh.
type DatasetSnapshot struct {
	RunID     string                    `json:"run_id"`
	FetchedAt time.Time                 `json:"fetched_at"`
	Scope     RefreshScope              `json:"scope"`
	Config    *DashboardConfig          `json:"config,omitempty"`
	Countries []Country                 `json:"countries,omitempty"`
	Regions   map[string]*RegionDataset `json:"regions,omitempty"` // Keyed by country ISO alpha-3.
}
