// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// SnapshotPath is where the roster snapshot CSV lives.
	SnapshotPath string `yaml:"snapshot_path"`

	// QualifyingStandards maps category names to qualifying distances in
	// metres. Lookups match by case-insensitive substring so "U16 Girls"
	// picks up the "Girls" standard.
	QualifyingStandards map[string]float64 `yaml:"qualifying_standards"`
}

// Default returns the built-in configuration, including the school's
// standing qualifying distances.
func Default() *Config {
	return &Config{
		ListenAddr:   ":8080",
		SnapshotPath: "./data/discus_backup.csv",
		QualifyingStandards: map[string]float64{
			"Girls":             15.0,
			"Junior Boys":       16.0,
			"Intermediate":      22.0,
			"Senior Boys":       20.0,
			"Senior Girls":      15.0,
			"Intermediate Boys": 22.0,
		},
	}
}

// Load reads configuration from the YAML file at filename, falling back to
// defaults when the file does not exist. Environment variables override
// either source:
//
//	LISTEN_ADDR, SNAPSHOT_PATH
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}
	return cfg, nil
}

// StandardFor resolves the qualifying distance for a category by
// case-insensitive substring match, taking the first match in sorted key
// order so overlapping keys resolve the same way on every call. The second
// return is false when no standard applies.
func (c *Config) StandardFor(category string) (float64, bool) {
	lower := strings.ToLower(category)
	for _, key := range c.Categories() {
		if strings.Contains(lower, strings.ToLower(key)) {
			return c.QualifyingStandards[key], true
		}
	}
	return 0, false
}

// Categories returns the known category names from the standards table,
// sorted, for manual-entry pickers. Free-text categories are still accepted
// everywhere; this is only a convenience list.
func (c *Config) Categories() []string {
	out := make([]string, 0, len(c.QualifyingStandards))
	for k := range c.QualifyingStandards {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
