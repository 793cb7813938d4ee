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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines a
// command that archives a refresh snapshot to Google Cloud Storage (GCS).
//
// Logic Flow:
//  1. Take the model.DatasetSnapshot produced by DatasetFetch.
//  2. Name the object "<prefix>/<scope>/<yyyy>/<mm>/<dd>/<run id>.json".
//  3. Stream the snapshot as JSON into the bucket.
//  4. Publish the object location under cloud.GetGCSObjectName() and pass the
//     snapshot on unchanged, so DatasetPublish still receives it.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/cor"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// SnapshotUpload writes each refresh snapshot to a bucket.
type SnapshotUpload struct {
	cor.BaseCommand
	client *storage.Client
	bucket string
	prefix string
}

// NewSnapshotUpload is the constructor for the SnapshotUpload command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: An initialized *storage.Client.
//   - bucket: The destination bucket.
//   - prefix: Object name prefix inside the bucket. May be empty.
func NewSnapshotUpload(name string, client *storage.Client, bucket, prefix string) *SnapshotUpload {
	return &SnapshotUpload{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket, prefix: prefix}
}

func (c *SnapshotUpload) IsExecutable(context cor.Context) bool {
	return c.client != nil && c.bucket != "" && c.BaseCommand.IsExecutable(context)
}

func (c *SnapshotUpload) Execute(context cor.Context) {
	snap, ok := context.Get(c.GetInputParam()).(*model.DatasetSnapshot)
	if !ok || snap == nil {
		c.Failed(context, fmt.Errorf("snapshot upload expects a dataset snapshot, got %T", context.Get(c.GetInputParam())))
		return
	}

	obj := cloud.NewSnapshotObject(c.bucket, c.prefix, string(snap.Scope), snap.RunID, snap.FetchedAt)
	writer := c.client.Bucket(obj.Bucket).Object(obj.Name).NewWriter(context.GetContext())
	writer.ContentType = obj.MIMEType

	if err := json.NewEncoder(writer).Encode(snap); err != nil {
		_ = writer.Close()
		c.Failed(context, fmt.Errorf("failed to write snapshot gs://%s/%s: %w", obj.Bucket, obj.Name, err))
		return
	}
	// Close finalizes the upload; its error is the one that matters.
	if err := writer.Close(); err != nil {
		c.Failed(context, fmt.Errorf("failed to finalize snapshot gs://%s/%s: %w", obj.Bucket, obj.Name, err))
		return
	}

	slog.InfoContext(context.GetContext(), "archived snapshot", "run_id", snap.RunID, "object", "gs://"+obj.Bucket+"/"+obj.Name)
	c.Succeeded(context)
	context.Add(cloud.GetGCSObjectName(), &obj)
	context.Add(c.GetOutputParam(), snap)
}
