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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file defines the Google Cloud Storage (GCS) object model used by the
// snapshot archive and the naming scheme of archived snapshots.
package cloud

import (
	"path"
	"time"
)

// SnapshotMIMEType is the content type of archived snapshots.
const SnapshotMIMEType = "application/json"

// GetGCSObjectName returns the chain context key under which the archived
// snapshot object is published.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSObject identifies an object in a bucket.
type GCSObject struct {
	Bucket   string // The name of the GCS bucket.
	Name     string // The name of the object.
	MIMEType string // The MIME type of the object (e.g., "application/json").
}

// NewSnapshotObject names the archive object of one refresh run:
// "<prefix>/<scope>/<yyyy>/<mm>/<dd>/<runID>.json". Date components are UTC.
func NewSnapshotObject(bucket, prefix, scope, runID string, fetchedAt time.Time) GCSObject {
	day := fetchedAt.UTC().Format("2006/01/02")
	return GCSObject{
		Bucket:   bucket,
		Name:     path.Join(prefix, scope, day, runID+".json"),
		MIMEType: SnapshotMIMEType,
	}
}
