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

package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/workflow"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/telemetry"
	test "github.com/jaycherian/gcp-go-covid-dashboard/internal/testutil"
)

func newWorkflow(t *testing.T, source services.DataSource) (*workflow.DatasetRefreshWorkflow, *services.DatasetStore, *telemetry.ResolveCollector) {
	t.Helper()
	collector, err := telemetry.NewResolveCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	store := services.NewDatasetStore(source, time.Second)
	return workflow.NewDatasetRefreshWorkflow(config, nil, source, store, collector), store, collector
}

func TestRefreshCountries(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "refresh-countries")
	defer span.End()

	source := test.NewFakeSource()
	wf, store, collector := newWorkflow(t, source)

	require.NoError(t, wf.Refresh(traceCtx, ""))
	logger.InfoContext(traceCtx, "refreshed", "countries", len(store.Countries()))

	assert.Len(t, store.Countries(), len(test.Countries()))
	assert.Equal(t, test.DashboardConfig(), store.Config())
	assert.Empty(t, store.LoadedRegionISOs())
	assert.Equal(t, 1, promtest.CollectAndCount(collector.FetchDuration))
}

func TestRefreshRegionsThenCountries(t *testing.T) {
	source := test.NewFakeSource()
	wf, store, collector := newWorkflow(t, source)

	require.NoError(t, wf.Refresh(ctx, `{"scope":"regions","country_iso_a3":"usa"}`))
	assert.Equal(t, []string{"USA"}, store.LoadedRegionISOs())
	assert.Empty(t, store.Countries())
	assert.Equal(t, float64(1), promtest.ToFloat64(collector.RegionDatasets))

	require.NoError(t, wf.Refresh(ctx, `{"scope":"countries"}`))
	assert.Equal(t, 2, source.RegionCalls("USA"))
	assert.NotEmpty(t, store.Countries())
}

func TestRefreshFailureKeepsPublishedData(t *testing.T) {
	source := test.NewFakeSource()
	wf, store, _ := newWorkflow(t, source)
	require.NoError(t, wf.Refresh(ctx, ""))

	source.SetErr(errors.New("upstream down"))
	err := wf.Refresh(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	assert.Len(t, store.Countries(), len(test.Countries()))
}

func TestRefreshRejectsBadTrigger(t *testing.T) {
	source := test.NewFakeSource()
	wf, _, _ := newWorkflow(t, source)

	require.Error(t, wf.Refresh(ctx, `{"scope":"regions"}`))
	assert.Equal(t, 0, source.CountryCalls())
}
