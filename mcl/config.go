package mcl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MapConfig describes the map to generate or load.
type MapConfig struct {
	Width      float64 `yaml:"width" json:"width"`
	Height     float64 `yaml:"height" json:"height"`
	Resolution float64 `yaml:"resolution" json:"resolution"`
	Areas      int     `yaml:"areas" json:"areas"`
	Colors     int     `yaml:"colors" json:"colors"`
	Walls      int     `yaml:"walls" json:"walls"`
	WallLength float64 `yaml:"wallLength,omitempty" json:"wallLength,omitempty"`
}

// FilterConfig describes the particle filter to run.
type FilterConfig struct {
	Particles int        `yaml:"particles" json:"particles"`
	Seed      int64      `yaml:"seed" json:"seed"`
	Sensor    SensorKind `yaml:"sensor" json:"sensor"`
}

// MQTTConfig holds the optional telemetry broker settings. An empty broker
// disables telemetry.
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty" json:"broker,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config is the full simulator configuration file.
type Config struct {
	Map      MapConfig    `yaml:"map" json:"map"`
	Filter   FilterConfig `yaml:"filter" json:"filter"`
	MQTT     MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	MaxSteps int          `yaml:"maxSteps,omitempty" json:"maxSteps,omitempty"`
	Runs     int          `yaml:"runs,omitempty" json:"runs,omitempty"`
}

// DefaultConfig returns the base-case simulation parameters.
func DefaultConfig() *Config {
	return &Config{
		Map: MapConfig{
			Width:      20,
			Height:     20,
			Resolution: 0.1,
			Areas:      100,
			Colors:     8,
			Walls:      10,
			WallLength: 15,
		},
		Filter: FilterConfig{
			Particles: 100,
			Seed:      1,
			Sensor:    SensorColor,
		},
		MaxSteps: 200,
		Runs:     1,
	}
}

// LoadConfig loads the simulator configuration from a YAML file, applies
// defaults for omitted fields and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the simulator would fail on
// at run time.
func (c *Config) Validate() error {
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map.width and map.height must be positive")
	}
	if c.Map.Resolution <= 0 {
		return fmt.Errorf("map.resolution must be positive")
	}
	if c.Map.Areas < 1 {
		return fmt.Errorf("map.areas must be at least 1")
	}
	if c.Map.Colors < 2 {
		return fmt.Errorf("map.colors must be at least 2")
	}
	if c.Map.Walls < 0 {
		return fmt.Errorf("map.walls must not be negative")
	}
	if c.Filter.Particles < 1 {
		return fmt.Errorf("filter.particles must be at least 1")
	}
	switch c.Filter.Sensor {
	case SensorRange, SensorColor:
	default:
		return fmt.Errorf("filter.sensor must be %q or %q, got %q",
			SensorRange, SensorColor, c.Filter.Sensor)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("maxSteps must be at least 1")
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1")
	}
	return nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
