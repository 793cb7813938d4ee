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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/zeebo/assert"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/telemetry"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLoggerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, slog.LevelInfo)
	logger.Warn("upstream slow", "country", "USA")

	line := decodeLine(t, &buf)
	assert.Equal(t, line["severity"], "WARNING")
	assert.Equal(t, line["message"], "upstream slow")
	assert.Equal(t, line["country"], "USA")
	_, ok := line["timestamp"]
	assert.True(t, ok)
}

func TestLoggerInjectsSpanContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, slog.LevelInfo).With("component", "store")
	logger.InfoContext(ctx, "loaded")

	line := decodeLine(t, &buf)
	assert.Equal(t, line["logging.googleapis.com/trace"], "4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Equal(t, line["logging.googleapis.com/spanId"], "00f067aa0ba902b7")
	assert.Equal(t, line["logging.googleapis.com/trace_sampled"], true)
	assert.Equal(t, line["component"], "store")
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, telemetry.ParseLevel("warn"))
	logger.Info("ignored")
	assert.Equal(t, buf.Len(), 0)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, telemetry.ParseLevel("DEBUG"), slog.LevelDebug)
	assert.Equal(t, telemetry.ParseLevel("warning"), slog.LevelWarn)
	assert.Equal(t, telemetry.ParseLevel("error"), slog.LevelError)
	assert.Equal(t, telemetry.ParseLevel(""), slog.LevelInfo)
	assert.Equal(t, telemetry.ParseLevel("verbose"), slog.LevelInfo)
}
