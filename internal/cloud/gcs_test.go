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

package cloud_test

import (
	"testing"
	"time"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
)

func TestNewSnapshotObject(t *testing.T) {
	at := time.Date(2021, 3, 4, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))
	obj := cloud.NewSnapshotObject("bucket", "snapshots", "regions", "run-1", at)

	assert.Equal(t, obj.Bucket, "bucket")
	assert.Equal(t, obj.Name, "snapshots/regions/2021/03/05/run-1.json")
	assert.Equal(t, obj.MIMEType, cloud.SnapshotMIMEType)
}

func TestNewSnapshotObjectNoPrefix(t *testing.T) {
	at := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)
	obj := cloud.NewSnapshotObject("bucket", "", "countries", "abc", at)
	assert.Equal(t, obj.Name, "countries/2021/03/04/abc.json")
}
