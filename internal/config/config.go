// Package config provides YAML-based configuration loading for Accessboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Accessboard configuration, loaded from
// accessboard.yaml.
type Config struct {
	Port       int              `yaml:"port"`
	Webservice WebserviceConfig `yaml:"webservice"`
	// Projects is optional: when the block is absent the dashboard runs
	// without project grouping instead of failing.
	Projects *ProjectsConfig `yaml:"projects"`
}

// WebserviceConfig points at the external accessibility-test service.
type WebserviceConfig struct {
	URL string `yaml:"url"`
}

// ProjectsConfig holds connection settings for the project store database.
type ProjectsConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ProjectsEnabled reports whether a project store is configured.
func (c *Config) ProjectsEnabled() bool {
	return c.Projects != nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 4000
	}
	if c.Projects != nil {
		if c.Projects.Host == "" {
			c.Projects.Host = "127.0.0.1"
		}
		if c.Projects.Port == 0 {
			c.Projects.Port = 3306
		}
		if c.Projects.User == "" {
			c.Projects.User = "root"
		}
		if c.Projects.Database == "" {
			c.Projects.Database = "accessboard"
		}
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Webservice.URL == "" {
		errs = append(errs, "webservice.url is required")
	} else if !strings.HasPrefix(c.Webservice.URL, "http://") && !strings.HasPrefix(c.Webservice.URL, "https://") {
		errs = append(errs, "webservice.url must be an http(s) URL")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
