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

package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
)

// FakeSource is an in-memory services.DataSource that counts its calls.
type FakeSource struct {
	mu sync.Mutex

	ConfigData  *model.DashboardConfig
	CountryData []model.Country
	RegionData  map[string]*model.RegionDataset

	// Err, when set, is returned by every call.
	Err error
	// Gate, when set, blocks Regions until it is closed or the context ends.
	Gate chan struct{}

	configCalls  int
	countryCalls int
	regionCalls  map[string]int
}

// NewFakeSource returns a source serving the sample datasets.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		ConfigData:  DashboardConfig(),
		CountryData: Countries(),
		RegionData:  map[string]*model.RegionDataset{"USA": USRegions()},
		regionCalls: make(map[string]int),
	}
}

func (f *FakeSource) Config(ctx context.Context) (*model.DashboardConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ConfigData, nil
}

func (f *FakeSource) Countries(ctx context.Context) ([]model.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countryCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CountryData, nil
}

func (f *FakeSource) Regions(ctx context.Context, countryISOA3 string) (*model.RegionDataset, error) {
	iso := strings.ToUpper(countryISOA3)
	f.mu.Lock()
	f.regionCalls[iso]++
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	dataset, ok := f.RegionData[iso]
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrUnknownCountry, iso)
	}
	return dataset, nil
}

// SetErr replaces Err under the source lock.
func (f *FakeSource) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// ConfigCalls returns the number of Config calls.
func (f *FakeSource) ConfigCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configCalls
}

// CountryCalls returns the number of Countries calls.
func (f *FakeSource) CountryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countryCalls
}

// RegionCalls returns the number of Regions calls for a country.
func (f *FakeSource) RegionCalls(countryISOA3 string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regionCalls[strings.ToUpper(countryISOA3)]
}
