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
// This file, `queries.go`, centralizes the BigQuery SQL used by
// BigQuerySource. Every query expects the fully qualified table name as its
// only format argument (%[1]s) and passes user input as query parameters.
//
// The source table holds one row per location and day. `aggregation_level`
// is 0 for a country, 1 for a first-level subdivision and 2 for a county.
package services

const (
	// qryLatestSnapshot picks the most recent row with a confirmed count for
	// every location. It is the common prefix of the queries below.
	qryLatestSnapshot = "WITH latest AS (" +
		"SELECT date, location_key, iso_3166_1_alpha_3, country_name, subregion1_name, subregion2_name, aggregation_level, " +
		"cumulative_confirmed, cumulative_deceased, cumulative_recovered " +
		"FROM `%[1]s` " +
		"WHERE cumulative_confirmed IS NOT NULL " +
		"QUALIFY ROW_NUMBER() OVER (PARTITION BY location_key ORDER BY date DESC) = 1) "

	// QryDashboardConfig sums the country rows into the global figures.
	//
	// Output columns: confirmed, deaths, recovered, last_update_date.
	QryDashboardConfig = qryLatestSnapshot +
		"SELECT IFNULL(SUM(cumulative_confirmed), 0) AS confirmed, " +
		"IFNULL(SUM(cumulative_deceased), 0) AS deaths, " +
		"IFNULL(SUM(cumulative_recovered), 0) AS recovered, " +
		"IFNULL(CAST(MAX(date) AS STRING), '') AS last_update_date " +
		"FROM latest WHERE aggregation_level = 0"

	// QryCountries lists every country. zoom_available is true when the table
	// has subdivision rows for the same ISO code.
	//
	// Output columns: country_name, country_iso_a3, zoom_available, confirmed, deaths, recovered.
	QryCountries = qryLatestSnapshot +
		"SELECT c.country_name, c.iso_3166_1_alpha_3 AS country_iso_a3, " +
		"EXISTS(SELECT 1 FROM latest s WHERE s.iso_3166_1_alpha_3 = c.iso_3166_1_alpha_3 AND s.aggregation_level > 0) AS zoom_available, " +
		"IFNULL(c.cumulative_confirmed, 0) AS confirmed, " +
		"IFNULL(c.cumulative_deceased, 0) AS deaths, " +
		"IFNULL(c.cumulative_recovered, 0) AS recovered " +
		"FROM latest c WHERE c.aggregation_level = 0 AND c.iso_3166_1_alpha_3 IS NOT NULL " +
		"ORDER BY c.country_name"

	// QryRegions lists the subdivisions and counties of the country given by
	// the @iso parameter. County names drop their " County" suffix so that the
	// display name can add it back uniformly.
	//
	// Output columns: region_name, subregion1, subregion2 (NULL for subdivisions),
	// confirmed, deaths, recovered.
	QryRegions = qryLatestSnapshot +
		"SELECT IF(aggregation_level = 2, REGEXP_REPLACE(subregion2_name, r' County$', ''), subregion1_name) AS region_name, " +
		"IFNULL(subregion1_name, '') AS subregion1, " +
		"IF(aggregation_level = 2, subregion2_name, NULL) AS subregion2, " +
		"IFNULL(cumulative_confirmed, 0) AS confirmed, " +
		"IFNULL(cumulative_deceased, 0) AS deaths, " +
		"IFNULL(cumulative_recovered, 0) AS recovered " +
		"FROM latest WHERE iso_3166_1_alpha_3 = @iso AND aggregation_level IN (1, 2) " +
		"ORDER BY aggregation_level, subregion1_name, subregion2_name"
)
