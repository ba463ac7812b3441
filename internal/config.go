package internal

import (
	"fmt"
	"log/slog"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Repo     RepoConfig        `yaml:"repo"`
	Manifest ManifestConfig    `yaml:"manifest"`
	DB       DBConfig          `yaml:"db"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Repo.Validate(); err != nil {
		return err
	}
	if err := c.Manifest.Validate(); err != nil {
		return err
	}
	return c.DB.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	// Normalise empty format to console for bare invocations.
	if c.LogFormat == "" {
		c.LogFormat = LogFormatConsole
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatConsole, LogFormatJSON)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RepoConfig holds the path to the data repository root. The git HEAD used
// for commit message fallback is resolved from here.
type RepoConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the repository configuration.
func (c *RepoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ManifestConfig holds the manifest location relative to the repo root.
type ManifestConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the manifest configuration.
func (c *ManifestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DBConfig maps logical data file names to paths relative to the repo root.
type DBConfig struct {
	Files map[string]string `yaml:"files"`
}

// Validate validates the data file configuration.
func (c *DBConfig) Validate() error {
	if len(c.Files) == 0 {
		return fmt.Errorf("db: files must map at least one logical name to a path")
	}
	for name, path := range c.Files {
		if name == "" || path == "" {
			return fmt.Errorf("db: files entry %q -> %q must be non-empty", name, path)
		}
	}
	return nil
}

// TrackedPaths returns the tracked file paths in stable order.
func (c *DBConfig) TrackedPaths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, p := range c.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// NewDefaultConfig returns a new Config with sensible default values.
// The defaults reproduce the published repository layout, so running with
// no config file behaves like the original automation.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatConsole,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Repo: RepoConfig{
			Path: ".",
		},
		Manifest: ManifestConfig{
			Path: "manifest.json",
		},
		DB: DBConfig{
			Files: map[string]string{
				"rules":        "db/rules.json",
				"replacements": "db/replacements.json",
				"dictionary":   "db/db.json",
			},
		},
	}
}
