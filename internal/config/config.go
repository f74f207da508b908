// Package config loads and validates the declarative platform configuration.
// The file mirrors what an operator would put in a home-automation YAML block:
// feed location, home coordinates, radius, category filters and notification
// channels. Operational knobs (ports, timeouts) live in the worker env config
// instead.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"vicemergency-feed/internal/domain/entity"
	pkgconfig "vicemergency-feed/internal/pkg/config"
)

// Defaults applied when the config file or individual keys are absent.
const (
	// DefaultFeedURL is the public VICEmergency GeoJSON incident feed.
	DefaultFeedURL = "https://emergency.vic.gov.au/public/osom-geojson.json"

	// DefaultRadiusKm bounds incidents to 20 km around the home coordinates.
	DefaultRadiusKm = 20.0

	// DefaultScanInterval is the feed poll period.
	DefaultScanInterval = 5 * time.Minute
)

// Default home coordinates (Melbourne CBD) used when neither the config file
// nor HOME_LATITUDE/HOME_LONGITUDE provide a reference point.
const (
	defaultHomeLatitude  = -37.8136
	defaultHomeLongitude = 144.9631
)

// Scan interval bounds. Anything below 30s hammers the feed endpoint;
// anything above a day means incidents outlive their usefulness.
const (
	minScanInterval = 30 * time.Second
	maxScanInterval = 24 * time.Hour
)

// Duration wraps time.Duration with YAML unmarshalling from Go duration
// strings ("5m", "90s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Webhook configures one notification webhook channel.
type Webhook struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// Notifications configures incident alert fan-out. Categories limits alerts
// to the listed alert levels; an empty list disables alerting entirely.
type Notifications struct {
	Categories []string `yaml:"categories"`
	Slack      Webhook  `yaml:"slack"`
	Discord    Webhook  `yaml:"discord"`
}

// Config is the validated platform configuration.
type Config struct {
	FeedURL           string        `yaml:"feed_url"`
	Latitude          *float64      `yaml:"latitude"`
	Longitude         *float64      `yaml:"longitude"`
	RadiusKm          float64       `yaml:"radius_km"`
	IncludeCategories []string      `yaml:"include_categories"`
	ExcludeCategories []string      `yaml:"exclude_categories"`
	Statewide         bool          `yaml:"statewide"`
	ScanInterval      Duration      `yaml:"scan_interval"`
	Notifications     Notifications `yaml:"notifications"`
}

// Default returns the configuration used when no config file is present.
// Home coordinates fall back to HOME_LATITUDE/HOME_LONGITUDE, then to the
// built-in default reference point.
func Default() *Config {
	lat := pkgconfig.LoadEnvFloat("HOME_LATITUDE", defaultHomeLatitude, pkgconfig.ValidateLatitude)
	lon := pkgconfig.LoadEnvFloat("HOME_LONGITUDE", defaultHomeLongitude, pkgconfig.ValidateLongitude)
	latV := lat.Value.(float64)
	lonV := lon.Value.(float64)

	return &Config{
		FeedURL:      DefaultFeedURL,
		Latitude:     &latV,
		Longitude:    &lonV,
		RadiusKm:     DefaultRadiusKm,
		Statewide:    false,
		ScanInterval: Duration(DefaultScanInterval),
		Notifications: Notifications{
			Categories: []string{entity.CategoryEmergencyWarning, entity.CategoryWatchAndAct},
		},
	}
}

// Load reads and validates the configuration file at path. A missing file is
// not an error: the defaults are returned so the worker can run unconfigured.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and returns all failures aggregated, so an
// operator can fix a broken file in one pass.
func (c *Config) Validate() error {
	var errs []error

	if err := pkgconfig.ValidateHTTPURL(c.FeedURL); err != nil {
		errs = append(errs, fmt.Errorf("feed_url: %w", err))
	}
	if c.Latitude != nil {
		if err := pkgconfig.ValidateLatitude(*c.Latitude); err != nil {
			errs = append(errs, fmt.Errorf("latitude: %w", err))
		}
	}
	if c.Longitude != nil {
		if err := pkgconfig.ValidateLongitude(*c.Longitude); err != nil {
			errs = append(errs, fmt.Errorf("longitude: %w", err))
		}
	}
	if c.RadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("radius_km: must be positive, got %v", c.RadiusKm))
	}
	if err := pkgconfig.ValidateDuration(c.ScanInterval.Std(), minScanInterval, maxScanInterval); err != nil {
		errs = append(errs, fmt.Errorf("scan_interval: %w", err))
	}

	errs = append(errs, validateCategories("include_categories", c.IncludeCategories)...)
	errs = append(errs, validateCategories("exclude_categories", c.ExcludeCategories)...)
	errs = append(errs, validateCategories("notifications.categories", c.Notifications.Categories)...)

	if c.Notifications.Slack.Enabled {
		if err := pkgconfig.ValidateHTTPURL(c.Notifications.Slack.WebhookURL); err != nil {
			errs = append(errs, fmt.Errorf("notifications.slack.webhook_url: %w", err))
		}
	}
	if c.Notifications.Discord.Enabled {
		if err := pkgconfig.ValidateHTTPURL(c.Notifications.Discord.WebhookURL); err != nil {
			errs = append(errs, fmt.Errorf("notifications.discord.webhook_url: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// HomeCoordinates returns the configured reference point.
func (c *Config) HomeCoordinates() (latitude, longitude float64) {
	lat, lon := defaultHomeLatitude, defaultHomeLongitude
	if c.Latitude != nil {
		lat = *c.Latitude
	}
	if c.Longitude != nil {
		lon = *c.Longitude
	}
	return lat, lon
}

func validateCategories(field string, categories []string) []error {
	var errs []error
	for _, cat := range categories {
		if !entity.IsValidCategory(cat) {
			errs = append(errs, fmt.Errorf(
				"%s: unknown category '%s' (valid: %v)", field, cat, entity.ValidCategories))
		}
	}
	return errs
}
