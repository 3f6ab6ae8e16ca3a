// Package config loads the optional tuning file for the localization
// tools. The JSON schema uses pointer fields so partial files are
// safe: omitted fields fall back to the stock defaults through the Get
// accessors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig is the root tuning schema: odometry noise mixing and
// the KLD-sampling parameters. Every field is optional; a tuning file
// only needs the values it changes.
type TuningConfig struct {
	// Odometry noise mixing, variances per squared unit of motion.
	// Alpha1/Alpha2 scale rotational noise from rotation and
	// translation; Alpha3/Alpha4 scale translational noise from
	// translation and rotation.
	Alpha1 *float64 `json:"alpha1,omitempty"`
	Alpha2 *float64 `json:"alpha2,omitempty"`
	Alpha3 *float64 `json:"alpha3,omitempty"`
	Alpha4 *float64 `json:"alpha4,omitempty"`

	// KLD-sampling parameters: the allowed divergence between the
	// population and its histogram approximation, and the standard
	// normal quantile of the confidence on that bound.
	PopulationError *float64 `json:"population_error,omitempty"`
	PopulationZ     *float64 `json:"population_z,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset, so
// the Get accessors serve pure defaults.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file
// must carry a .json extension and stay under the size cap; fields
// omitted from the file keep their defaults, so partial configs are
// safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that every set field is in range.
func (c *TuningConfig) Validate() error {
	for _, a := range []struct {
		name  string
		value *float64
	}{
		{"alpha1", c.Alpha1},
		{"alpha2", c.Alpha2},
		{"alpha3", c.Alpha3},
		{"alpha4", c.Alpha4},
	} {
		if a.value != nil && *a.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", a.name, *a.value)
		}
	}

	if c.PopulationError != nil {
		if *c.PopulationError <= 0 || *c.PopulationError >= 1 {
			return fmt.Errorf("population_error must be between 0 and 1 exclusive, got %f", *c.PopulationError)
		}
	}

	if c.PopulationZ != nil && *c.PopulationZ <= 0 {
		return fmt.Errorf("population_z must be positive, got %f", *c.PopulationZ)
	}

	return nil
}

// GetAlpha1 returns the alpha1 value or the default.
func (c *TuningConfig) GetAlpha1() float64 {
	if c.Alpha1 == nil {
		return 0.2
	}
	return *c.Alpha1
}

// GetAlpha2 returns the alpha2 value or the default.
func (c *TuningConfig) GetAlpha2() float64 {
	if c.Alpha2 == nil {
		return 0.2
	}
	return *c.Alpha2
}

// GetAlpha3 returns the alpha3 value or the default.
func (c *TuningConfig) GetAlpha3() float64 {
	if c.Alpha3 == nil {
		return 0.2
	}
	return *c.Alpha3
}

// GetAlpha4 returns the alpha4 value or the default.
func (c *TuningConfig) GetAlpha4() float64 {
	if c.Alpha4 == nil {
		return 0.2
	}
	return *c.Alpha4
}

// GetPopulationError returns the population_error value or the default.
func (c *TuningConfig) GetPopulationError() float64 {
	if c.PopulationError == nil {
		return 0.01
	}
	return *c.PopulationError
}

// GetPopulationZ returns the population_z value or the default.
func (c *TuningConfig) GetPopulationZ() float64 {
	if c.PopulationZ == nil {
		return 3.0
	}
	return *c.PopulationZ
}
