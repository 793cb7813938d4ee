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
// This file, `source.go`, defines the DataSource abstraction over the
// upstream datasets and its REST implementation, HTTPSource.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

var (
	// ErrUpstreamStatus is returned when the upstream answers with an unexpected status.
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	// ErrUnknownCountry is returned when no region dataset exists for a country.
	ErrUnknownCountry = errors.New("unknown country")
)

// DataSource supplies the dashboard datasets. Implementations must return
// non-negative stats.
type DataSource interface {
	// Config returns the global figures shown in the dashboard header.
	Config(ctx context.Context) (*model.DashboardConfig, error)
	// Countries returns the full country list.
	Countries(ctx context.Context) ([]model.Country, error)
	// Regions returns the region dataset of one country, keyed by ISO alpha-3.
	Regions(ctx context.Context, countryISOA3 string) (*model.RegionDataset, error)
}

// Doer sends an HTTP request. cloud.QuotaAwareHTTPClient and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource reads the datasets from the upstream REST API:
//
//	GET {APIRoot}/config
//	GET {APIRoot}/countries
//	GET {APIRoot}/regions/{iso}
type HTTPSource struct {
	Client  Doer
	APIRoot string
}

// NewHTTPSource creates a REST source rooted at apiRoot.
func NewHTTPSource(client Doer, apiRoot string) *HTTPSource {
	return &HTTPSource{Client: client, APIRoot: strings.TrimSuffix(apiRoot, "/")}
}

func (s *HTTPSource) Config(ctx context.Context) (*model.DashboardConfig, error) {
	out := &model.DashboardConfig{}
	if err := s.getJSON(ctx, "/config", out); err != nil {
		return nil, err
	}
	out.GlobalStats = out.GlobalStats.Sanitized()
	return out, nil
}

func (s *HTTPSource) Countries(ctx context.Context) ([]model.Country, error) {
	var out []model.Country
	if err := s.getJSON(ctx, "/countries", &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Stats = out[i].Stats.Sanitized()
	}
	return out, nil
}

func (s *HTTPSource) Regions(ctx context.Context, countryISOA3 string) (*model.RegionDataset, error) {
	out := &model.RegionDataset{}
	if err := s.getJSON(ctx, "/regions/"+url.PathEscape(countryISOA3), out); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, countryISOA3)
		}
		return nil, err
	}
	for i := range out.Regions {
		out.Regions[i].Stats = out.Regions[i].Stats.Sanitized()
	}
	return out, nil
}

var errNotFound = errors.New("not found")

func (s *HTTPSource) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.APIRoot+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s returned %s: %w", ErrUpstreamStatus, path, resp.Status, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s returned %s", ErrUpstreamStatus, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
