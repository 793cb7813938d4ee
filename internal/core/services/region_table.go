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

package services

import (
	"sort"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// RegionRow is one line of a country's region table.
type RegionRow struct {
	model.DisplayStats
	RegionName string `json:"region_name"`
	Subregion1 string `json:"subregion1"`
	// ShareOfCountryPercent is the region's share of the country's confirmed
	// cases, absent when the country has none.
	ShareOfCountryPercent *float64 `json:"share_of_country_percent,omitempty"`
}

// RegionTable lists the regions of one country, most confirmed cases first.
type RegionTable struct {
	CountryName  string `json:"country_name"`
	CountryISOA3 string `json:"country_iso_a3"`
	// TableAvailable is false when the country has too many regions for a
	// table to be useful; Rows is then empty.
	TableAvailable bool        `json:"table_available"`
	RegionCount    int         `json:"region_count"`
	Rows           []RegionRow `json:"rows"`
}

// BuildRegionTable aggregates every region of dataset. The table is only
// available while the region count stays below maxRows; maxRows <= 0 disables
// the limit. Ties on confirmed cases are ordered by display name.
func BuildRegionTable(country model.Country, dataset *model.RegionDataset, maxRows int) RegionTable {
	table := RegionTable{
		CountryName:  country.Name,
		CountryISOA3: country.ISOA3,
		Rows:         make([]RegionRow, 0),
	}
	if dataset == nil {
		return table
	}
	table.RegionCount = len(dataset.Regions)
	table.TableAvailable = maxRows <= 0 || table.RegionCount < maxRows
	if !table.TableAvailable {
		return table
	}

	for i := range dataset.Regions {
		r := &dataset.Regions[i]
		row := RegionRow{
			DisplayStats: Aggregate(model.ResolvedEntity{Country: &country, Region: r}),
			RegionName:   r.Name,
			Subregion1:   r.Subregion1,
		}
		if country.Stats.Confirmed > 0 {
			share := roundTo2(float64(r.Stats.Confirmed) / float64(country.Stats.Confirmed) * 100)
			row.ShareOfCountryPercent = &share
		}
		table.Rows = append(table.Rows, row)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		a, b := table.Rows[i], table.Rows[j]
		if a.Confirmed != b.Confirmed {
			return a.Confirmed > b.Confirmed
		}
		return a.DisplayName < b.DisplayName
	})
	return table
}
