package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vicemergency-feed/internal/domain/entity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, DefaultRadiusKm, cfg.RadiusKm)
	assert.Equal(t, DefaultScanInterval, cfg.ScanInterval.Std())
	assert.False(t, cfg.Statewide)
	assert.Empty(t, cfg.IncludeCategories)
	assert.Equal(t,
		[]string{entity.CategoryEmergencyWarning, entity.CategoryWatchAndAct},
		cfg.Notifications.Categories)
}

func TestLoad_ParsesFullFile(t *testing.T) {
	path := writeConfig(t, `
latitude: -37.75
longitude: 145.0
radius_km: 50.5
include_categories:
  - Emergency Warning
  - Watch and Act
exclude_categories:
  - Burn Area
statewide: true
scan_interval: 2m
notifications:
  categories:
    - Emergency Warning
  slack:
    enabled: true
    webhook_url: https://hooks.slack.com/services/T000/B000/XXX
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	lat, lon := cfg.HomeCoordinates()
	assert.Equal(t, -37.75, lat)
	assert.Equal(t, 145.0, lon)
	assert.Equal(t, 50.5, cfg.RadiusKm)
	assert.True(t, cfg.Statewide)
	assert.Equal(t, 2*time.Minute, cfg.ScanInterval.Std())
	assert.Equal(t, []string{"Emergency Warning", "Watch and Act"}, cfg.IncludeCategories)
	assert.Equal(t, []string{"Burn Area"}, cfg.ExcludeCategories)
	assert.True(t, cfg.Notifications.Slack.Enabled)
}

func TestLoad_RejectsUnknownCategory(t *testing.T) {
	path := writeConfig(t, `
include_categories:
  - Fire
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include_categories")
	assert.Contains(t, err.Error(), "Fire")
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Default()
	bad := 123.0
	cfg.Latitude = &bad
	cfg.RadiusKm = -1
	cfg.ScanInterval = Duration(time.Second)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
	assert.Contains(t, err.Error(), "radius_km")
	assert.Contains(t, err.Error(), "scan_interval")
}

func TestValidate_EnabledWebhookNeedsURL(t *testing.T) {
	cfg := Default()
	cfg.Notifications.Discord.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifications.discord.webhook_url")
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "scan_interval: soonish\n")
	_, err := Load(path)
	require.Error(t, err)
}
