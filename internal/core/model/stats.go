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
// This file, `stats.go`, contains the records supplied by the upstream data
// source: the country list, the per-country region datasets, and the global
// dashboard configuration. Field names follow the upstream JSON contract so
// that the records can be decoded, cached, and re-encoded without mapping.
package model

// Stats holds the cumulative case counts for a single geographic entity.
// All values are non-negative; use Sanitized when reading untrusted input.
type Stats struct {
	Confirmed int64 `json:"confirmed" bigquery:"confirmed"` // Cumulative confirmed cases.
	Deaths    int64 `json:"deaths" bigquery:"deaths"`       // Cumulative deaths.
	Recovered int64 `json:"recovered" bigquery:"recovered"` // Cumulative recoveries.
}

// Sanitized returns a copy of the stats with any negative count clamped to zero.
// Upstream feeds occasionally publish corrections as negative cumulative values.
func (s Stats) Sanitized() Stats {
	return Stats{
		Confirmed: max(s.Confirmed, 0),
		Deaths:    max(s.Deaths, 0),
		Recovered: max(s.Recovered, 0),
	}
}

// Country is a top-level geographic entity with its own aggregate statistics.
// The ISO 3166-1 alpha-3 code is the identity of the record.
type Country struct {
	Name          string `json:"country_name"`   // Display name, also used for suffix matching of location paths.
	ISOA3         string `json:"country_iso_a3"` // ISO 3166-1 alpha-3 code.
	ZoomAvailable bool   `json:"zoom_available"` // True when a region dataset can be fetched for this country.
	Stats         Stats  `json:"stats"`
}

// Region is either a first-level subdivision (state, province) or a leaf
// (county) within a country. The presence of Subregion2 marks a leaf.
type Region struct {
	Name       string  `json:"region_name"`
	Subregion1 string  `json:"subregion1"`
	Subregion2 *string `json:"subregion2,omitempty"`
	Stats      Stats   `json:"stats"`
}

// IsLeaf reports whether the region is a second-level (county-like) subdivision.
// An empty Subregion2 is treated the same as an absent one.
func (r *Region) IsLeaf() bool {
	return r.Subregion2 != nil && *r.Subregion2 != ""
}

// RegionDataset is the supplementary dataset for a country with zoom available.
type RegionDataset struct {
	Regions []Region `json:"regions"`
}

// DashboardConfig carries the global figures displayed in the dashboard header.
type DashboardConfig struct {
	GlobalStats    Stats  `json:"global_stats"`
	LastUpdateDate string `json:"last_update_date"`
}
