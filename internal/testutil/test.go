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

// Package testutil provides helpers and sample data for the test suite: the
// test configuration loader, a fixed set of countries and regions, and an
// in-memory DataSource.
package testutil

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// StateManager caches the test configuration so it is loaded once per run.
type StateManager struct {
	mu     sync.Mutex
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// repoRoot walks up from the working directory to the directory holding go.mod.
func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// SetupOS points the configuration loader at configs/.env.test.toml.
func SetupOS() (err error) {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if err = os.Setenv(cloud.EnvConfigFilePrefix, filepath.Join(root, "configs")); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig returns the test configuration, loading it on first use.
func GetConfig() *cloud.Config {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

func ptr(s string) *string { return &s }

// Countries returns the sample country list. United States is the only
// country with zoom available. "Guinea" is a suffix of "Papua New Guinea"
// and has no confirmed cases.
func Countries() []model.Country {
	return []model.Country{
		{Name: "United States", ISOA3: "USA", ZoomAvailable: true,
			Stats: model.Stats{Confirmed: 1_000_000, Deaths: 20_000, Recovered: 500_000}},
		{Name: "Italy", ISOA3: "ITA",
			Stats: model.Stats{Confirmed: 200_000, Deaths: 25_000, Recovered: 100_000}},
		{Name: "Guinea", ISOA3: "GIN"},
		{Name: "Papua New Guinea", ISOA3: "PNG",
			Stats: model.Stats{Confirmed: 50, Deaths: 1, Recovered: 10}},
	}
}

// USRegions returns the sample region dataset of the United States. Both
// California and Texas contain a county named Orange.
func USRegions() *model.RegionDataset {
	return &model.RegionDataset{Regions: []model.Region{
		{Name: "California", Subregion1: "California",
			Stats: model.Stats{Confirmed: 300_000, Deaths: 6_000}},
		{Name: "Orange", Subregion1: "California", Subregion2: ptr("Orange County"),
			Stats: model.Stats{Confirmed: 100_000, Deaths: 3_000}},
		{Name: "Texas", Subregion1: "Texas",
			Stats: model.Stats{Confirmed: 250_000, Deaths: 5_000}},
		{Name: "Orange", Subregion1: "Texas", Subregion2: ptr("Orange County"),
			Stats: model.Stats{Confirmed: 1_000, Deaths: 20}},
		{Name: "Loving", Subregion1: "Texas", Subregion2: ptr("Loving County")},
	}}
}

// DashboardConfig returns the sample global figures.
func DashboardConfig() *model.DashboardConfig {
	return &model.DashboardConfig{
		GlobalStats:    model.Stats{Confirmed: 1_200_050, Deaths: 45_001, Recovered: 600_010},
		LastUpdateDate: "2021-03-04",
	}
}
