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

// Package api contains the HTTP routes of the dashboard service.
//
// Every data endpoint distinguishes "not loaded yet" from "absent": while the
// country list or a country's region dataset is still being fetched the
// handler starts the fetch and answers 202 with the loading status, so the
// client polls. A fetch that failed is reported once as 503, and the next
// request retries it.
package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Dashboard serves the dashboard datasets out of a DatasetStore.
type Dashboard struct {
	store     *services.DatasetStore
	collector *telemetry.ResolveCollector
	maxRows   int
}

// NewDashboard creates the handlers. collector may be nil. maxRows bounds the
// region table; see services.BuildRegionTable.
func NewDashboard(store *services.DatasetStore, collector *telemetry.ResolveCollector, maxRows int) *Dashboard {
	return &Dashboard{store: store, collector: collector, maxRows: maxRows}
}

// Routes registers the dashboard endpoints on r, usually the "/api/v1" group.
func (d *Dashboard) Routes(r *gin.RouterGroup) {
	r.GET("/config", d.getConfig)
	r.GET("/stats", d.getStats)

	countries := r.Group("/countries")
	{
		countries.GET("", d.getCountries)
		countries.GET("/:iso/regions", d.getRegionTable)
		countries.GET("/:iso/regions.xlsx", d.getRegionTableXLSX)
		countries.GET("/:iso/location", d.getLocationByISO)
	}

	r.GET("/locations/*name", d.getLocation)
	r.GET("/metrics", gin.WrapH(d.collector.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (d *Dashboard) getConfig(c *gin.Context) {
	config := d.store.Config()
	if config == nil {
		if len(d.store.Countries()) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "dashboard config unavailable"})
			return
		}
		d.countriesLoading(c)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (d *Dashboard) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"config": d.store.Config(),
		"store":  d.store.Stats(),
	})
}

func (d *Dashboard) getCountries(c *gin.Context) {
	countries := d.store.Countries()
	if len(countries) == 0 {
		d.countriesLoading(c)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (d *Dashboard) getLocation(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location name is required"})
		return
	}
	d.respond(c, services.Resolve(d.store.Countries(), name, d.store.Regions))
}

func (d *Dashboard) getLocationByISO(c *gin.Context) {
	res := services.ResolveISO(d.store.Countries(), c.Param("iso"), c.Query("region"), c.Query("subregion1"), d.store.Regions)
	d.respond(c, res)
}

// respond renders a resolution and counts its outcome.
func (d *Dashboard) respond(c *gin.Context, res model.Resolution) {
	d.collector.ObserveResolution(res.Status)

	switch res.Status {
	case model.StatusLoading:
		d.countriesLoading(c)
	case model.StatusPendingRegionData:
		d.regionsLoading(c, res.Country.ISOA3)
	case model.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"status": res.Status})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status": res.Status,
			"stats":  services.Aggregate(*res.Entity),
		})
	}
}

func (d *Dashboard) getRegionTable(c *gin.Context) {
	table, ok := d.regionTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, table)
}

func (d *Dashboard) getRegionTableXLSX(c *gin.Context) {
	table, ok := d.regionTable(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := services.WriteRegionTableXLSX(&buf, table); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to render region table", "country", table.CountryISOA3, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render region table"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-regions.xlsx"`, table.CountryISOA3))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// regionTable looks up the country named by the ":iso" parameter and builds
// its region table. When ok is false the response has already been written.
func (d *Dashboard) regionTable(c *gin.Context) (table services.RegionTable, ok bool) {
	countries := d.store.Countries()
	if len(countries) == 0 {
		d.countriesLoading(c)
		return table, false
	}

	iso := strings.ToUpper(c.Param("iso"))
	var country *model.Country
	for i := range countries {
		if countries[i].ISOA3 == iso {
			country = &countries[i]
			break
		}
	}
	if country == nil || !country.ZoomAvailable {
		c.JSON(http.StatusNotFound, gin.H{"status": model.StatusNotFound})
		return table, false
	}

	dataset, loaded := d.store.Regions(iso)
	if !loaded {
		d.regionsLoading(c, iso)
		return table, false
	}
	return services.BuildRegionTable(*country, dataset, d.maxRows), true
}

func (d *Dashboard) countriesLoading(c *gin.Context) {
	if err := d.store.TakeCountriesError(); err != nil {
		slog.WarnContext(c.Request.Context(), "country list unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "country list unavailable"})
		return
	}
	d.store.RequestCountries()
	c.JSON(http.StatusAccepted, gin.H{"status": model.StatusLoading})
}

func (d *Dashboard) regionsLoading(c *gin.Context, iso string) {
	if err := d.store.TakeRegionError(iso); err != nil {
		slog.WarnContext(c.Request.Context(), "region dataset unavailable", "country", iso, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": fmt.Sprintf("regions of %s unavailable", iso)})
		return
	}
	d.store.RequestRegions(iso)
	c.JSON(http.StatusAccepted, gin.H{"status": model.StatusPendingRegionData})
}
