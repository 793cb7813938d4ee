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
// This file, `bigquery_source.go`, defines BigQuerySource, a DataSource that
// reads the datasets from the COVID-19 open data table in BigQuery.
package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// BigQuerySource encapsulates the client and table coordinates needed to
// query the open dataset.
type BigQuerySource struct {
	BigqueryClient *bigquery.Client
	ProjectID      string // Project owning the dataset; empty means the client's project.
	DatasetName    string
	Table          string
}

// GetFQN returns the table name formatted for standard SQL,
// e.g. `bigquery-public-data.covid19_open_data.covid19_open_data`.
func (s *BigQuerySource) GetFQN() string {
	var ds *bigquery.Dataset
	if s.ProjectID != "" {
		ds = s.BigqueryClient.DatasetInProject(s.ProjectID, s.DatasetName)
	} else {
		ds = s.BigqueryClient.Dataset(s.DatasetName)
	}
	return strings.Replace(ds.Table(s.Table).FullyQualifiedName(), ":", ".", -1)
}

type configRow struct {
	Confirmed      int64  `bigquery:"confirmed"`
	Deaths         int64  `bigquery:"deaths"`
	Recovered      int64  `bigquery:"recovered"`
	LastUpdateDate string `bigquery:"last_update_date"`
}

type countryRow struct {
	Name          string `bigquery:"country_name"`
	ISOA3         string `bigquery:"country_iso_a3"`
	ZoomAvailable bool   `bigquery:"zoom_available"`
	Confirmed     int64  `bigquery:"confirmed"`
	Deaths        int64  `bigquery:"deaths"`
	Recovered     int64  `bigquery:"recovered"`
}

type regionRow struct {
	Name       string              `bigquery:"region_name"`
	Subregion1 string              `bigquery:"subregion1"`
	Subregion2 bigquery.NullString `bigquery:"subregion2"`
	Confirmed  int64               `bigquery:"confirmed"`
	Deaths     int64               `bigquery:"deaths"`
	Recovered  int64               `bigquery:"recovered"`
}

func (s *BigQuerySource) Config(ctx context.Context) (*model.DashboardConfig, error) {
	itr, err := s.BigqueryClient.Query(fmt.Sprintf(QryDashboardConfig, s.GetFQN())).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard config from BigQuery: %w", err)
	}
	var r configRow
	if err := itr.Next(&r); err != nil {
		return nil, fmt.Errorf("failed to scan dashboard config: %w", err)
	}
	return &model.DashboardConfig{
		GlobalStats:    model.Stats{Confirmed: r.Confirmed, Deaths: r.Deaths, Recovered: r.Recovered}.Sanitized(),
		LastUpdateDate: r.LastUpdateDate,
	}, nil
}

func (s *BigQuerySource) Countries(ctx context.Context) ([]model.Country, error) {
	itr, err := s.BigqueryClient.Query(fmt.Sprintf(QryCountries, s.GetFQN())).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read countries from BigQuery: %w", err)
	}

	out := make([]model.Country, 0)
	for {
		var r countryRow
		err := itr.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate countries: %w", err)
		}
		out = append(out, model.Country{
			Name:          r.Name,
			ISOA3:         r.ISOA3,
			ZoomAvailable: r.ZoomAvailable,
			Stats:         model.Stats{Confirmed: r.Confirmed, Deaths: r.Deaths, Recovered: r.Recovered}.Sanitized(),
		})
	}
	return out, nil
}

func (s *BigQuerySource) Regions(ctx context.Context, countryISOA3 string) (*model.RegionDataset, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryRegions, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "iso", Value: strings.ToUpper(countryISOA3)}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions of %s from BigQuery: %w", countryISOA3, err)
	}

	out := &model.RegionDataset{Regions: make([]model.Region, 0)}
	for {
		var r regionRow
		err := itr.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate regions of %s: %w", countryISOA3, err)
		}
		region := model.Region{
			Name:       r.Name,
			Subregion1: r.Subregion1,
			Stats:      model.Stats{Confirmed: r.Confirmed, Deaths: r.Deaths, Recovered: r.Recovered}.Sanitized(),
		}
		if r.Subregion2.Valid {
			sub2 := r.Subregion2.StringVal
			region.Subregion2 = &sub2
		}
		out.Regions = append(out.Regions, region)
	}
	if len(out.Regions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, countryISOA3)
	}
	return out, nil
}
