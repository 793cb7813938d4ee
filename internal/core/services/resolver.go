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
// This file, `resolver.go`, maps a location path taken from the dashboard URL
// to a country, or to a region within a country, using whatever datasets are
// currently loaded. Resolution is a pure function of its inputs: it never
// fetches anything itself, it only reports that data is still missing.
package services

import (
	"strings"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// RegionLookup returns the region dataset currently loaded for a country, if any.
// DatasetStore.Regions satisfies it.
type RegionLookup func(countryISOA3 string) (*model.RegionDataset, bool)

// Resolve finds the entity named by path.
//
// A country matches when path ends with its name. If several names match
// ("Guinea", "Papua New Guinea") the longest wins, and ties keep list order.
// For countries with zoom available the path is then parsed into a Leaf or
// Subdivision location and matched against the country's region dataset,
// falling back to the country itself when no region matches.
//
// Inputs:
//   - countries: The loaded country list. Empty means it is still loading.
//   - path: The location path, e.g. "Orange, California, United States".
//   - lookup: Source of loaded region datasets. May be nil.
//
// Outputs:
//   - model.Resolution: Loading, PendingRegionData, NotFound, or Resolved.
func Resolve(countries []model.Country, path string, lookup RegionLookup) model.Resolution {
	if len(countries) == 0 {
		return model.Resolution{Status: model.StatusLoading}
	}
	country := matchCountrySuffix(countries, path)
	if country == nil {
		return model.Resolution{Status: model.StatusNotFound}
	}
	return resolveWithin(country, model.ParseLocation(path), lookup)
}

// ResolveISO is the identifier-keyed form of Resolve. The country is selected
// by its ISO alpha-3 code (case-insensitive) and the region by explicit names
// rather than by parsing a free-text path.
//
// Inputs:
//   - countries: The loaded country list. Empty means it is still loading.
//   - isoA3: The country code.
//   - region: Region name; empty selects the country itself.
//   - subregion1: Parent subdivision; non-empty selects a leaf region.
//   - lookup: Source of loaded region datasets. May be nil.
func ResolveISO(countries []model.Country, isoA3, region, subregion1 string, lookup RegionLookup) model.Resolution {
	if len(countries) == 0 {
		return model.Resolution{Status: model.StatusLoading}
	}
	var country *model.Country
	for i := range countries {
		if strings.EqualFold(countries[i].ISOA3, isoA3) {
			country = &countries[i]
			break
		}
	}
	if country == nil {
		return model.Resolution{Status: model.StatusNotFound}
	}

	loc := model.Location{Kind: model.LocationUnqualified}
	switch {
	case region != "" && subregion1 != "":
		loc = model.LeafLocation(region, subregion1, country.Name)
	case region != "":
		loc = model.SubdivisionLocation(region, country.Name)
	}
	return resolveWithin(country, loc, lookup)
}

func matchCountrySuffix(countries []model.Country, path string) *model.Country {
	var best *model.Country
	for i := range countries {
		c := &countries[i]
		if !strings.HasSuffix(path, c.Name) {
			continue
		}
		if best == nil || len(c.Name) > len(best.Name) {
			best = c
		}
	}
	return best
}

func resolveWithin(country *model.Country, loc model.Location, lookup RegionLookup) model.Resolution {
	if !country.ZoomAvailable {
		return resolved(country, nil)
	}

	var dataset *model.RegionDataset
	var ok bool
	if lookup != nil {
		dataset, ok = lookup(country.ISOA3)
	}
	if !ok || dataset == nil {
		return model.Resolution{Status: model.StatusPendingRegionData, Country: country}
	}

	for i := range dataset.Regions {
		if r := &dataset.Regions[i]; loc.Matches(country, r) {
			return resolved(country, r)
		}
	}
	return resolved(country, nil)
}

func resolved(country *model.Country, region *model.Region) model.Resolution {
	return model.Resolution{
		Status:  model.StatusResolved,
		Country: country,
		Entity:  &model.ResolvedEntity{Country: country, Region: region},
	}
}
