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

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/commands"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/cor"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/testutil"
)

func newContext(in interface{}) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, in)
	return ctx
}

type recordingObserver struct {
	mu     sync.Mutex
	scopes []string
	errs   []error
}

func (r *recordingObserver) ObserveFetch(scope string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope)
	r.errs = append(r.errs, err)
}

type invalidation struct {
	scope model.RefreshScope
	isos  []string
}

type invalidatingSource struct {
	*testutil.FakeSource
	invalidated []invalidation
}

func (s *invalidatingSource) Invalidate(_ context.Context, scope model.RefreshScope, iso ...string) error {
	s.invalidated = append(s.invalidated, invalidation{scope: scope, isos: iso})
	return nil
}

func TestRefreshTriggerReader(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *model.RefreshRequest
		wantErr bool
	}{
		{name: "empty payload", in: "", want: &model.RefreshRequest{Scope: model.RefreshCountries}},
		{name: "no scope", in: `{}`, want: &model.RefreshRequest{Scope: model.RefreshCountries}},
		{name: "unknown scope", in: `{"scope":"everything","country_iso_a3":"usa"}`, want: &model.RefreshRequest{Scope: model.RefreshCountries}},
		{name: "regions", in: `{"scope":"regions","country_iso_a3":" usa "}`, want: &model.RefreshRequest{Scope: model.RefreshRegions, CountryISOA3: "USA"}},
		{name: "regions without country", in: `{"scope":"regions"}`, wantErr: true},
		{name: "malformed", in: `{"scope":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(tt.in)
			cmd := commands.NewRefreshTriggerReader("trigger")
			require.True(t, cmd.IsExecutable(ctx))
			cmd.Execute(ctx)

			if tt.wantErr {
				assert.True(t, ctx.HasErrors())
				assert.Nil(t, ctx.Get(cor.CtxOut))
				return
			}
			require.False(t, ctx.HasErrors())
			assert.Equal(t, tt.want, ctx.Get(cor.CtxOut))
		})
	}
}

func TestRefreshTriggerReaderRejectsNonString(t *testing.T) {
	ctx := newContext(42)
	commands.NewRefreshTriggerReader("trigger").Execute(ctx)
	assert.True(t, ctx.HasErrors())
}

func TestDatasetFetchCountriesRefetchesLoadedRegions(t *testing.T) {
	source := testutil.NewFakeSource()
	store := services.NewDatasetStore(source, time.Second)
	_, err := store.FetchRegions(context.Background(), "USA")
	require.NoError(t, err)

	observer := &recordingObserver{}
	ctx := newContext(&model.RefreshRequest{Scope: model.RefreshCountries})
	commands.NewDatasetFetch("fetch", source, store, observer).Execute(ctx)

	require.False(t, ctx.HasErrors(), cor.JoinedErrors(ctx))
	snap, ok := ctx.Get(cor.CtxOut).(*model.DatasetSnapshot)
	require.True(t, ok)
	assert.NotEmpty(t, snap.RunID)
	assert.Equal(t, model.RefreshCountries, snap.Scope)
	assert.Len(t, snap.Countries, len(testutil.Countries()))
	assert.Equal(t, testutil.DashboardConfig(), snap.Config)
	assert.Contains(t, snap.Regions, "USA")
	assert.Equal(t, 2, source.RegionCalls("USA"))
	assert.Equal(t, []string{"countries"}, observer.scopes)
	assert.Equal(t, []error{nil}, observer.errs)
}

func TestDatasetFetchKeepsGoingWithoutConfig(t *testing.T) {
	source := testutil.NewFakeSource()
	failing := &configFailingSource{FakeSource: source}

	ctx := newContext(&model.RefreshRequest{Scope: model.RefreshCountries})
	commands.NewDatasetFetch("fetch", failing, nil, nil).Execute(ctx)

	require.False(t, ctx.HasErrors())
	snap := ctx.Get(cor.CtxOut).(*model.DatasetSnapshot)
	assert.Nil(t, snap.Config)
	assert.NotEmpty(t, snap.Countries)
}

type configFailingSource struct {
	*testutil.FakeSource
}

func (s *configFailingSource) Config(context.Context) (*model.DashboardConfig, error) {
	return nil, errors.New("config unavailable")
}

func TestDatasetFetchRegions(t *testing.T) {
	source := &invalidatingSource{FakeSource: testutil.NewFakeSource()}
	ctx := newContext(&model.RefreshRequest{Scope: model.RefreshRegions, CountryISOA3: "USA"})
	commands.NewDatasetFetch("fetch", source, nil, nil).Execute(ctx)

	require.False(t, ctx.HasErrors())
	snap := ctx.Get(cor.CtxOut).(*model.DatasetSnapshot)
	assert.Nil(t, snap.Countries)
	assert.Equal(t, testutil.USRegions(), snap.Regions["USA"])
	assert.Equal(t, 0, source.CountryCalls())
	assert.Equal(t, []invalidation{{scope: model.RefreshRegions, isos: []string{"USA"}}}, source.invalidated)
}

func TestDatasetFetchCountriesInvalidatesLoadedRegions(t *testing.T) {
	source := &invalidatingSource{FakeSource: testutil.NewFakeSource()}
	store := services.NewDatasetStore(source, time.Second)
	_, err := store.FetchRegions(context.Background(), "USA")
	require.NoError(t, err)

	ctx := newContext(&model.RefreshRequest{Scope: model.RefreshCountries})
	commands.NewDatasetFetch("fetch", source, store, nil).Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Equal(t, []invalidation{{scope: model.RefreshCountries, isos: []string{"USA"}}}, source.invalidated)
}

func TestDatasetFetchUnknownCountryFails(t *testing.T) {
	observer := &recordingObserver{}
	ctx := newContext(&model.RefreshRequest{Scope: model.RefreshRegions, CountryISOA3: "ITA"})
	commands.NewDatasetFetch("fetch", testutil.NewFakeSource(), nil, observer).Execute(ctx)

	require.True(t, ctx.HasErrors())
	assert.ErrorIs(t, ctx.GetErrors()["fetch"], services.ErrUnknownCountry)
	assert.Nil(t, ctx.Get(cor.CtxOut))
	require.Len(t, observer.errs, 1)
	assert.Error(t, observer.errs[0])
}

func TestDatasetFetchCountriesFailure(t *testing.T) {
	source := testutil.NewFakeSource()
	source.SetErr(errors.New("upstream down"))
	ctx := newContext(&model.RefreshRequest{Scope: model.RefreshCountries})
	commands.NewDatasetFetch("fetch", source, nil, nil).Execute(ctx)
	assert.True(t, ctx.HasErrors())
}

type gauge struct{ n int }

func (g *gauge) SetRegionDatasets(n int) { g.n = n }

func TestDatasetPublish(t *testing.T) {
	store := services.NewDatasetStore(testutil.NewFakeSource(), time.Second)
	g := &gauge{}
	snap := &model.DatasetSnapshot{
		RunID:     "run-1",
		FetchedAt: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC),
		Scope:     model.RefreshCountries,
		Config:    testutil.DashboardConfig(),
		Countries: testutil.Countries(),
		Regions:   map[string]*model.RegionDataset{"USA": testutil.USRegions()},
	}

	ctx := newContext(snap)
	commands.NewDatasetPublish("publish", store, g).Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Len(t, store.Countries(), len(testutil.Countries()))
	assert.Equal(t, testutil.DashboardConfig(), store.Config())
	dataset, ok := store.Regions("usa")
	assert.True(t, ok)
	assert.Equal(t, testutil.USRegions(), dataset)
	assert.Equal(t, 1, g.n)
	assert.Same(t, snap, ctx.Get(cor.CtxOut))
}

func TestSnapshotUploadNeedsBucket(t *testing.T) {
	ctx := newContext(&model.DatasetSnapshot{RunID: "run-1"})
	assert.False(t, commands.NewSnapshotUpload("upload", nil, "bucket", "").IsExecutable(ctx))
}

func TestChainSkipsUploadWithoutBucket(t *testing.T) {
	source := testutil.NewFakeSource()
	store := services.NewDatasetStore(source, time.Second)

	chain := cor.NewBaseChain("refresh")
	chain.AddCommand(commands.NewRefreshTriggerReader("trigger"))
	chain.AddCommand(commands.NewDatasetFetch("fetch", source, store, nil))
	chain.AddCommand(commands.NewSnapshotUpload("upload", nil, "", ""))
	chain.AddCommand(commands.NewDatasetPublish("publish", store, nil))

	ctx := newContext(`{"scope":"countries"}`)
	chain.Execute(ctx)

	require.False(t, ctx.HasErrors(), cor.JoinedErrors(ctx))
	assert.Len(t, store.Countries(), len(testutil.Countries()))
	assert.Equal(t, testutil.DashboardConfig(), store.Config())
}
