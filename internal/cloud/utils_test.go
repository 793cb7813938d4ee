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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/cloud"
)

const baseToml = `
[application]
name = "covid-dashboard"
data_source = "http"
log_level = "info"

[upstream]
api_root = "https://base.example.com/api"
max_retries = 2

[dashboard]
max_region_table_rows = 200

[topic_subscriptions.RefreshTopic]
name = "dashboard-refresh-sub"
`

const overrideToml = `
[upstream]
api_root = "https://override.example.com/api"

[cache]
enabled = true
ttl_seconds = 30
`

func TestLoadConfigOverridesBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.unit.toml"), []byte(overrideToml), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "unit")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	assert.Equal(t, "covid-dashboard", config.Application.Name)
	assert.Equal(t, cloud.SourceHTTP, config.Application.DataSource)
	assert.Equal(t, "https://override.example.com/api", config.Upstream.APIRoot)
	assert.Equal(t, 2, config.Upstream.MaxRetries)
	assert.Equal(t, 200, config.Dashboard.MaxRegionTableRows)
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, 30*time.Second, config.Cache.TTL())
	assert.Equal(t, "dashboard-refresh-sub", config.TopicSubscriptions["RefreshTopic"].Name)
}

func TestLoadConfigMissingFiles(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "nothing")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	assert.Empty(t, config.Application.Name)
	assert.Equal(t, 10*time.Second, config.Upstream.Timeout())
	assert.Equal(t, 10*time.Minute, config.Cache.TTL())
	assert.Equal(t, 30*time.Second, config.Refresh.RegionFetchTimeout())
}
