package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "NOTION_CLEANER"

// Config is one cleanup configuration file.
type Config struct {
	Token     string           `mapstructure:"token"`
	Databases []map[string]any `mapstructure:"databases"`

	// Everything else at the top level; the recognised option keys
	// (title, content, props, created, edited) override the defaults
	// for every database in the file.
	Options map[string]any `mapstructure:",remain"`

	path string
}

// Path is the file the configuration was read from.
func (c *Config) Path() string { return c.path }

// Load reads a YAML (or any viper-supported) configuration file. Each call
// uses its own viper instance so several files can be processed in a row.
// NOTION_CLEANER_TOKEN overrides the token from the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); !slices.Contains(viper.SupportedExts, ext) {
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindEnv("token"); err != nil {
		return nil, fmt.Errorf("binding token env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	delete(c.Options, "token")
	delete(c.Options, "databases")
	c.path = path
	return &c, nil
}

// URL returns the job's database url, if it has one.
func URL(job map[string]any) (string, bool) {
	raw, ok := job["url"]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
