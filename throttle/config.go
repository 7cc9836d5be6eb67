/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/acronis/go-appkit/config"
)

// Config represents a declarative throttling configuration:
// per-activity limits tables and initial throttle values.
// Configuration can be loaded in different formats (YAML, JSON) using config.Loader, viper,
// or with json.Unmarshal/yaml.Unmarshal functions directly, and applied to a Throttler with Apply.
type Config struct {
	// Limits contains limits tables. Key is an activity key.
	Limits map[string]LimitsTableConfig `mapstructure:"limits" yaml:"limits" json:"limits"`

	// Throttles contains initial throttle values. Key is an activity key.
	Throttles map[string]config.TimeDuration `mapstructure:"throttles" yaml:"throttles" json:"throttles"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// ConfigOption is a type for functional options for the Config.
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPrefix string
}

// WithKeyPrefix returns a ConfigOption that sets a key prefix for parsing configuration parameters.
// This prefix will be used by config.Loader.
func WithKeyPrefix(keyPrefix string) ConfigOption {
	return func(o *configOptions) {
		o.keyPrefix = keyPrefix
	}
}

// NewConfig creates a new instance of the Config.
func NewConfig(options ...ConfigOption) *Config {
	var opts configOptions
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{keyPrefix: opts.keyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for throttling in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(_ config.DataProvider) {
}

// Set sets throttling configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	if err := dp.Unmarshal(c, func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.DecodeHook = MapstructureDecodeHook()
	}); err != nil {
		return err
	}
	return c.Validate()
}

// Validate validates configuration.
// Violations of a single limits table are aggregated into one error.
func (c *Config) Validate() error {
	for activity, table := range c.Limits {
		if violations := table.toLimitsTable().Validate(); len(violations) != 0 {
			return fmt.Errorf("validate limits for activity %q: %s", activity, strings.Join(violations, "; "))
		}
	}
	for activity, delay := range c.Throttles {
		if delay < 0 {
			return fmt.Errorf("validate throttle for activity %q: delay should be >= 0, got %s",
				activity, time.Duration(delay))
		}
	}
	return nil
}

// Apply installs the configured limits tables and initial throttle values into the Throttler.
func (c *Config) Apply(ctx context.Context, throttler *Throttler) error {
	for activity, table := range c.Limits {
		if err := throttler.SetLimits(ctx, Key(activity), table.toLimitsTable()); err != nil {
			return err
		}
	}
	for activity, delay := range c.Throttles {
		if err := throttler.SetThrottle(ctx, Key(activity), time.Duration(delay)); err != nil {
			return fmt.Errorf("apply throttle for activity %q: %w", activity, err)
		}
	}
	return nil
}

// LimitEntryConfig represents a configuration of a single limits table entry.
type LimitEntryConfig struct {
	// LoadFactor is a caller-defined breakpoint in arbitrary units.
	LoadFactor int64 `mapstructure:"loadFactor" yaml:"loadFactor" json:"loadFactor"`

	// Delay is a delay that applies from the breakpoint on.
	// Human-readable durations ("5ms") and integer nanoseconds are supported.
	Delay config.TimeDuration `mapstructure:"delay" yaml:"delay" json:"delay"`
}

// LimitsTableConfig represents a configuration of an activity's limits table.
type LimitsTableConfig []LimitEntryConfig

func (t LimitsTableConfig) toLimitsTable() LimitsTable {
	table := make(LimitsTable, 0, len(t))
	for _, e := range t {
		table = append(table, LimitEntry{LoadFactor: e.LoadFactor, Delay: time.Duration(e.Delay)})
	}
	return table
}

// MapstructureDecodeHook returns a DecodeHookFunc for mapstructure to handle custom types.
func MapstructureDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
