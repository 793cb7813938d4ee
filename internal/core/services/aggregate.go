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
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// Aggregate derives the display statistics for a resolved entity.
//
// The display name is "{region} County" for a leaf region, "{region}, {country}"
// for a first-level subdivision, and the country name otherwise. The fatality
// rate is only present when there is at least one confirmed case.
func Aggregate(entity model.ResolvedEntity) model.DisplayStats {
	stats := entity.Stats()
	out := model.DisplayStats{
		DisplayName:  displayName(entity),
		Level:        entity.Level(),
		CountryISOA3: entity.Country.ISOA3,
		Confirmed:    stats.Confirmed,
		Deaths:       stats.Deaths,
		Recovered:    stats.Recovered,
	}

	p := message.NewPrinter(language.English)
	out.Formatted = model.FormattedStats{
		Confirmed: p.Sprintf("%d", stats.Confirmed),
		Deaths:    p.Sprintf("%d", stats.Deaths),
		Recovered: p.Sprintf("%d", stats.Recovered),
	}
	if rate, ok := FatalityRate(stats); ok {
		out.FatalityRatePercent = &rate
		out.Formatted.FatalityRate = fmt.Sprintf("%.2f %%", rate)
	}
	return out
}

// FatalityRate returns deaths / confirmed * 100 rounded to two decimals.
// ok is false when confirmed is not positive.
func FatalityRate(s model.Stats) (rate float64, ok bool) {
	if s.Confirmed <= 0 {
		return 0, false
	}
	return roundTo2(float64(s.Deaths) / float64(s.Confirmed) * 100), true
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func displayName(entity model.ResolvedEntity) string {
	switch entity.Level() {
	case model.LevelLeaf:
		return entity.Region.Name + " County"
	case model.LevelSubdivision:
		return entity.Region.Name + model.LocationSeparator + entity.Country.Name
	default:
		return entity.Country.Name
	}
}
