package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"symgraph/internal/paths"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. SYMGRAPH_INDEX_SCIPPATH.
const EnvPrefix = "SYMGRAPH"

// Config represents the complete symgraph configuration
type Config struct {
	Version    int    `json:"version" mapstructure:"version" yaml:"version"`
	ProjectDir string `json:"projectDir" mapstructure:"projectDir" yaml:"projectDir"`

	Index   IndexConfig   `json:"index" mapstructure:"index" yaml:"index"`
	Query   QueryConfig   `json:"query" mapstructure:"query" yaml:"query"`
	Watch   WatchConfig   `json:"watch" mapstructure:"watch" yaml:"watch"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// IndexConfig locates the SCIP input and the SQLite store built from it
type IndexConfig struct {
	ScipPath      string   `json:"scipPath" mapstructure:"scipPath" yaml:"scipPath"`
	StorePath     string   `json:"storePath" mapstructure:"storePath" yaml:"storePath"`
	Exclude       []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`
	ImportWorkers int      `json:"importWorkers" mapstructure:"importWorkers" yaml:"importWorkers"`
}

// QueryConfig holds defaults applied to every query built by the CLI and MCP server
type QueryConfig struct {
	RestrictToProject bool `json:"restrictToProject" mapstructure:"restrictToProject" yaml:"restrictToProject"`
	IgnoreCase        bool `json:"ignoreCase" mapstructure:"ignoreCase" yaml:"ignoreCase"`
	MaxSuggestions    int  `json:"maxSuggestions" mapstructure:"maxSuggestions" yaml:"maxSuggestions"`
}

// WatchConfig contains index watch settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" mapstructure:"debounceMs" yaml:"debounceMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format" yaml:"format"`
	Level      string `json:"level" mapstructure:"level" yaml:"level"`
	File       string `json:"file" mapstructure:"file" yaml:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize" yaml:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" yaml:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    CurrentVersion,
		ProjectDir: ".",
		Index: IndexConfig{
			ScipPath:      "index.scip",
			StorePath:     filepath.Join(paths.StateDirName, "index.db"),
			Exclude:       []string{},
			ImportWorkers: 4,
		},
		Query: QueryConfig{
			RestrictToProject: true,
			IgnoreCase:        false,
			MaxSuggestions:    5,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "warn",
			MaxBackups: 3,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("projectDir", d.ProjectDir)
	v.SetDefault("index.scipPath", d.Index.ScipPath)
	v.SetDefault("index.storePath", d.Index.StorePath)
	v.SetDefault("index.exclude", d.Index.Exclude)
	v.SetDefault("index.importWorkers", d.Index.ImportWorkers)
	v.SetDefault("query.restrictToProject", d.Query.RestrictToProject)
	v.SetDefault("query.ignoreCase", d.Query.IgnoreCase)
	v.SetDefault("query.maxSuggestions", d.Query.MaxSuggestions)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads .symgraph/config.json under root, layered over defaults and
// SYMGRAPH_* environment variables. A missing file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.StateDir(root))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolve(root)

	return &cfg, nil
}

// resolve makes relative paths absolute against root.
func (c *Config) resolve(root string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	c.ProjectDir = filepath.Clean(abs(c.ProjectDir))
	c.Index.ScipPath = abs(c.Index.ScipPath)
	c.Index.StorePath = abs(c.Index.StorePath)
	c.Logging.File = abs(c.Logging.File)
}

// Save writes the configuration to .symgraph/config.json
func (c *Config) Save(root string) error {
	if _, err := paths.EnsureStateDir(root); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.ConfigPath(root), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.Index.StorePath == "" {
		return &ConfigError{Field: "index.storePath", Message: "must not be empty"}
	}
	if c.Index.ImportWorkers < 1 {
		return &ConfigError{Field: "index.importWorkers", Message: "must be at least 1"}
	}
	for _, pattern := range c.Index.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return &ConfigError{Field: "index.exclude", Message: fmt.Sprintf("invalid glob %q", pattern)}
		}
	}
	if c.Query.MaxSuggestions < 0 {
		return &ConfigError{Field: "query.maxSuggestions", Message: "must not be negative"}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
