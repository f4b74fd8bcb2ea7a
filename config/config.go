// Package config loads the navcontour tool configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gorustyt/navcontour/common/logger"
	"github.com/gorustyt/navcontour/recast"
)

type Config struct {
	Contour recast.ContourConfig `yaml:"contour"`
	Log     logger.Config        `yaml:"log"`

	// Input is a compact heightfield dump.
	Input string `yaml:"input"`
	// Output receives the contour set record.
	Output string `yaml:"output"`
	// ObjOutput optionally receives the contours as OBJ polylines.
	ObjOutput string `yaml:"obj_output"`
	// MetricsOutput optionally receives the build metrics in text format.
	MetricsOutput string `yaml:"metrics_output"`
}

func Default() Config {
	return Config{
		Contour: recast.DefaultContourConfig(),
		Log:     logger.DefaultConfig(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := c.Contour.Validate(); err != nil {
		return fmt.Errorf("config: contour: %w", err)
	}
	if err := validate.Struct(c.Log); err != nil {
		return fmt.Errorf("config: log: %w", err)
	}
	return nil
}

// Save writes c as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
