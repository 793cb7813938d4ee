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

package telemetry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResolveCollector exposes the dashboard's Prometheus metrics: resolution
// outcomes, upstream fetch latency, and the size of the in-memory datasets.
type ResolveCollector struct {
	gatherer prometheus.Gatherer

	Resolutions    *prometheus.CounterVec   // dashboard_resolutions_total{status}
	FetchDuration  *prometheus.HistogramVec // dashboard_fetch_duration_seconds{scope,outcome}
	RegionDatasets prometheus.Gauge         // dashboard_region_datasets_loaded
}

// NewResolveCollector registers the metrics against reg, or the default
// registerer when reg is nil. Registering twice against the same registry
// returns the collectors registered first.
func NewResolveCollector(reg prometheus.Registerer) (*ResolveCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	resolutions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_resolutions_total",
		Help: "Location resolutions by outcome.",
	}, []string{"status"}), "dashboard_resolutions_total")
	if err != nil {
		return nil, err
	}

	fetchDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_fetch_duration_seconds",
		Help:    "Duration of dataset refresh runs against the upstream source.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"scope", "outcome"}), "dashboard_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	regionDatasets, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_region_datasets_loaded",
		Help: "Number of country region datasets held in memory.",
	}), "dashboard_region_datasets_loaded")
	if err != nil {
		return nil, err
	}

	return &ResolveCollector{
		gatherer:       gatherer,
		Resolutions:    resolutions,
		FetchDuration:  fetchDuration,
		RegionDatasets: regionDatasets,
	}, nil
}

// ObserveResolution counts one resolution outcome.
func (c *ResolveCollector) ObserveResolution(status fmt.Stringer) {
	if c == nil || c.Resolutions == nil {
		return
	}
	c.Resolutions.WithLabelValues(status.String()).Inc()
}

// ObserveFetch records the duration of a refresh run.
func (c *ResolveCollector) ObserveFetch(scope string, d time.Duration, err error) {
	if c == nil || c.FetchDuration == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.FetchDuration.WithLabelValues(scope, outcome).Observe(d.Seconds())
}

// SetRegionDatasets updates the loaded region dataset gauge.
func (c *ResolveCollector) SetRegionDatasets(n int) {
	if c == nil || c.RegionDatasets == nil {
		return
	}
	c.RegionDatasets.Set(float64(n))
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *ResolveCollector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
