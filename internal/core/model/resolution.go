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
// This file, `resolution.go`, holds the outcome types of location resolution:
// the explicit result status, the resolved entity, and the display-ready
// statistics derived from it.
package model

import (
	"encoding/json"
	"fmt"
)

// Status is the outcome of resolving a location path. Callers must not
// confuse the loading states with NotFound: the first means "ask again later",
// the second means the data confirms the location is absent.
type Status int

const (
	// StatusLoading means the country list has not been loaded yet.
	StatusLoading Status = iota
	// StatusPendingRegionData means a zoomable country matched but its region
	// dataset has not arrived yet. It is a sub-state of loading.
	StatusPendingRegionData
	// StatusNotFound means the country list is loaded and no country matched.
	StatusNotFound
	// StatusResolved means a country, and possibly a region, was resolved.
	StatusResolved
)

var statusNames = map[Status]string{
	StatusLoading:           "loading",
	StatusPendingRegionData: "pending_region_data",
	StatusNotFound:          "not_found",
	StatusResolved:          "resolved",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsLoading reports whether the status is one of the incomplete-data states.
func (s Status) IsLoading() bool {
	return s == StatusLoading || s == StatusPendingRegionData
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Level identifies which kind of entity a display record describes.
type Level string

const (
	LevelCountry     Level = "country"
	LevelSubdivision Level = "subdivision"
	LevelLeaf        Level = "leaf"
)

// ResolvedEntity is a country, optionally paired with one of its regions.
type ResolvedEntity struct {
	Country *Country
	Region  *Region // nil for a country-level entity.
}

// Level returns the level of the most specific entity held.
func (e ResolvedEntity) Level() Level {
	switch {
	case e.Region == nil:
		return LevelCountry
	case e.Region.IsLeaf():
		return LevelLeaf
	default:
		return LevelSubdivision
	}
}

// Stats returns the region's stats when a region was resolved, else the country's.
func (e ResolvedEntity) Stats() Stats {
	if e.Region != nil {
		return e.Region.Stats
	}
	return e.Country.Stats
}

// Resolution is the result of a single resolution pass.
type Resolution struct {
	Status Status
	// Country is the matched country for PendingRegionData and Resolved. The
	// caller uses it to start the region fetch for zoomable countries.
	Country *Country
	// Entity is set only when Status is StatusResolved.
	Entity *ResolvedEntity
}

// DisplayStats are the figures handed to the rendering layer.
type DisplayStats struct {
	DisplayName  string `json:"display_name"`
	Level        Level  `json:"level"`
	CountryISOA3 string `json:"country_iso_a3"`
	Confirmed    int64  `json:"confirmed"`
	Deaths       int64  `json:"deaths"`
	Recovered    int64  `json:"recovered"`
	// FatalityRatePercent is nil when confirmed is zero; the metric must then be
	// omitted rather than shown as 0% or NaN.
	FatalityRatePercent *float64       `json:"fatality_rate_percent,omitempty"`
	Formatted           FormattedStats `json:"formatted"`
}

// FormattedStats are the counts rendered with thousands separators.
type FormattedStats struct {
	Confirmed    string `json:"confirmed"`
	Deaths       string `json:"deaths"`
	Recovered    string `json:"recovered"`
	FatalityRate string `json:"fatality_rate,omitempty"`
}
