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

package services_test

import (
	"bytes"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/services"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/testutil"
)

func TestWriteRegionTableXLSX(t *testing.T) {
	table := services.BuildRegionTable(*countryByISO(t, "USA"), testutil.USRegions(), 200)

	var buf bytes.Buffer
	require.NoError(t, services.WriteRegionTableXLSX(&buf, table))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows(services.RegionSheet)
	require.NoError(t, err)

	require.Len(t, rows, 6)
	assert.Equal(t, services.RegionTableHeader, rows[0])
	assert.Equal(t, "California, United States", rows[1][0])
	assert.Equal(t, "California", rows[1][1])
	assert.Equal(t, "300000", rows[1][2])
	assert.Equal(t, "6000", rows[1][3])
	assert.Equal(t, "Loving County", rows[5][0])
}

func TestWriteRegionTableXLSXEmpty(t *testing.T) {
	table := services.BuildRegionTable(*countryByISO(t, "USA"), testutil.USRegions(), 1)

	var buf bytes.Buffer
	require.NoError(t, services.WriteRegionTableXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows(services.RegionSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
