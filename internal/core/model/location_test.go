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
	"testing"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

func strPtr(s string) *string { return &s }

func TestParseLocation(t *testing.T) {
	cases := []struct {
		path string
		want model.Location
	}{
		{"Orange, California, United States", model.LeafLocation("Orange", "California", "United States")},
		{"California, United States", model.SubdivisionLocation("California", "United States")},
		{"United States", model.Location{Kind: model.LocationUnqualified}},
		{"", model.Location{Kind: model.LocationUnqualified}},
		{"a, b, c, d", model.Location{Kind: model.LocationUnqualified}},
		// "," without a space is not a separator.
		{"Orange,California,United States", model.Location{Kind: model.LocationUnqualified}},
		// Commas inside names cannot be escaped and shift the segment count.
		{"Seoul, Korea, South", model.LeafLocation("Seoul", "Korea", "South")},
	}
	for _, tc := range cases {
		assert.Equal(t, model.ParseLocation(tc.path), tc.want)
	}
}

func TestLocationMatches(t *testing.T) {
	us := &model.Country{Name: "United States", ISOA3: "USA", ZoomAvailable: true}
	california := &model.Region{Name: "California", Subregion1: "California"}
	orange := &model.Region{Name: "Orange", Subregion1: "California", Subregion2: strPtr("Orange County")}
	emptyLeaf := &model.Region{Name: "Kern", Subregion1: "California", Subregion2: strPtr("")}

	leaf := model.LeafLocation("Orange", "California", "United States")
	assert.True(t, leaf.Matches(us, orange))
	assert.False(t, leaf.Matches(us, california))
	assert.False(t, model.LeafLocation("Orange", "Texas", "United States").Matches(us, orange))
	assert.False(t, model.LeafLocation("Orange", "California", "Mexico").Matches(us, orange))

	sub := model.SubdivisionLocation("California", "United States")
	assert.True(t, sub.Matches(us, california))
	assert.False(t, model.SubdivisionLocation("Orange", "United States").Matches(us, orange))
	assert.True(t, model.SubdivisionLocation("Kern", "United States").Matches(us, emptyLeaf))

	assert.False(t, model.Location{Kind: model.LocationUnqualified}.Matches(us, california))
}
