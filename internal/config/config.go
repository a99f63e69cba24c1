// Package config loads sweatz settings from a YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Profiles and the database each one uses when none is configured.
const (
	ProfileDevelopment = "development"
	ProfileTesting     = "testing"
	ProfileProduction  = "production"
)

var profileDatabases = map[string]string{
	ProfileDevelopment: "sweatz_dev",
	ProfileTesting:     "sweatz_test",
	ProfileProduction:  "sweatz_prod",
}

// Config holds all sweatz configuration.
type Config struct {
	// Profile selects defaults: development, testing or production.
	Profile string `yaml:"profile"`

	// Database names the emulated database. Empty means the profile's
	// default.
	Database string `yaml:"database"`

	// DevelopmentMode is reported by the status command. It is off unless
	// set; the development profile forces it on.
	DevelopmentMode bool `yaml:"development_mode"`

	// Seed loads the built-in fixtures into a new store.
	Seed bool `yaml:"seed"`

	// IDScheme picks the identity generator: objectid or uuid.
	IDScheme string `yaml:"id_scheme"`

	// ServerVersion overrides the reported server version.
	ServerVersion string `yaml:"server_version,omitempty"`

	// Fixtures lists extra fixture files (YAML or CUE) applied after the
	// seed. Relative paths resolve against the config file's directory.
	Fixtures []string `yaml:"fixtures,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Profile:  ProfileDevelopment,
		Seed:     true,
		IDScheme: "objectid",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides, and validates the result. An empty path skips the file.
// Unknown keys in the file are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		base := filepath.Dir(path)
		for i, f := range cfg.Fixtures {
			if !filepath.IsAbs(f) {
				cfg.Fixtures[i] = filepath.Join(base, f)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies SWEATZ_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v, ok := os.LookupEnv("SWEATZ_ENV"); ok {
		c.Profile = v
	}
	if v, ok := os.LookupEnv("SWEATZ_DATABASE"); ok {
		c.Database = v
	}
	if v, ok := os.LookupEnv("SWEATZ_ID_SCHEME"); ok {
		c.IDScheme = v
	}
	if v, ok := os.LookupEnv("SWEATZ_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("SWEATZ_FIXTURES"); ok {
		c.Fixtures = nil
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				c.Fixtures = append(c.Fixtures, f)
			}
		}
	}

	for name, dst := range map[string]*bool{
		"SWEATZ_DEVELOPMENT_MODE": &c.DevelopmentMode,
		"SWEATZ_SEED":             &c.Seed,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = b
	}
	return nil
}

// resolve fills profile-dependent defaults.
func (c *Config) resolve() {
	if c.Database == "" {
		c.Database = profileDatabases[c.Profile]
	}
	if c.Profile == ProfileDevelopment {
		c.DevelopmentMode = true
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, ok := profileDatabases[c.Profile]; !ok {
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	switch c.IDScheme {
	case "objectid", "uuid":
	default:
		return fmt.Errorf("unknown id_scheme %q (want objectid or uuid)", c.IDScheme)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging format %q (want json or console)", c.Logging.Format)
	}
	return nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return lvl, fmt.Errorf("invalid logging level: %w", err)
	}
	return lvl, nil
}
