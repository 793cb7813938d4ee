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

// Package main contains the logic for setting up and starting the Pub/Sub message listeners.
// A message on the refresh topic runs the dataset refresh workflow out of schedule,
// e.g. right after the upstream publishes a new daily report.
package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
)

// RefreshTopic is the `topic_subscriptions` key of the refresh trigger.
const RefreshTopic = "RefreshTopic"

// SetupListeners attaches the refresh workflow to its listener and starts it.
// Without a configured subscription only the timer refreshes the datasets.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[RefreshTopic]
	if !ok {
		slog.Info("no refresh subscription configured", "topic", RefreshTopic)
		return
	}
	listener.SetCommand(state.refresh)
	listener.Listen(ctx)
	slog.Info("refresh listener started", "subscription", config.TopicSubscriptions[RefreshTopic].Name)
}
