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

package model_test

import (
	"encoding/json"
	"testing"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

func TestStatsSanitized(t *testing.T) {
	s := model.Stats{Confirmed: -1, Deaths: 5, Recovered: -100}.Sanitized()
	assert.Equal(t, s, model.Stats{Confirmed: 0, Deaths: 5, Recovered: 0})
}

func TestRegionDecodesUpstreamShape(t *testing.T) {
	payload := `{"regions":[
		{"region_name":"California","subregion1":"California","stats":{"confirmed":3,"deaths":1,"recovered":0}},
		{"region_name":"Orange","subregion1":"California","subregion2":"Orange County","stats":{"confirmed":2,"deaths":0,"recovered":0}}
	]}`
	var ds model.RegionDataset
	assert.NoError(t, json.Unmarshal([]byte(payload), &ds))
	assert.Equal(t, len(ds.Regions), 2)
	assert.False(t, ds.Regions[0].IsLeaf())
	assert.True(t, ds.Regions[1].IsLeaf())
	assert.Equal(t, *ds.Regions[1].Subregion2, "Orange County")
	assert.Equal(t, ds.Regions[0].Stats.Confirmed, int64(3))
}
