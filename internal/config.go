package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/featlint/internal/layout"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Layout  LayoutConfig      `yaml:"layout"`
	Rules   RulesConfig       `yaml:"rules"`
	History HistoryConfig     `yaml:"history"`
	Metrics MetricsConfig     `yaml:"metrics"`
	Auth    AuthConfig        `yaml:"auth"`
	Vcs     VcsConfig         `yaml:"vcs"`
}

// Validate validates the sections every run mode depends on. Layout and
// Metrics are validated by the run modes that need them, so that e.g.
// record-metrics works without a suite layout configured.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for serve mode.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LayoutConfig holds the per-role path segments between the project root
// and the feature directory, e.g. "app/src/test/java/pages".
type LayoutConfig struct {
	Features     string `yaml:"features"`
	Interactions string `yaml:"interactions"`
	Pages        string `yaml:"pages"`
	Steps        string `yaml:"steps"`
}

// Validate validates the layout configuration.
func (c *LayoutConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Features, validation.Required),
		validation.Field(&c.Interactions, validation.Required),
		validation.Field(&c.Pages, validation.Required),
		validation.Field(&c.Steps, validation.Required),
	)
}

// Segments converts the configuration into layout segments.
func (c *LayoutConfig) Segments() layout.Segments {
	return layout.Segments{
		Features:     c.Features,
		Interactions: c.Interactions,
		Pages:        c.Pages,
		Steps:        c.Steps,
	}
}

// RulesConfig holds external inputs to the built-in rule catalog.
//
// LocatorClass may legitimately be absent: the rule that depends on it
// fails closed instead of aborting the run, so it is not validated here.
type RulesConfig struct {
	LocatorClass string `yaml:"locator_class"`
}

// HistoryConfig holds the optional run-history database location. An
// empty path disables history recording.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds the session metrics recorder settings. Both fields
// are required only when the record-metrics command is used.
type MetricsConfig struct {
	ClientURL   string `yaml:"client_url"`
	PackageName string `yaml:"package_name"`
}

// Validate checks the fields needed by the metrics recorder.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientURL, validation.Required),
		validation.Field(&c.PackageName, validation.Required),
	)
}

// AuthConfig holds authentication configuration for serve mode.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// VcsConfig guards project-root discovery. When RepositoryName is set,
// the discovered git toplevel must end with it.
type VcsConfig struct {
	RepositoryName string `yaml:"repository_name"`
}

// NewDefaultConfig returns a new Config with sensible default values.
// Layout segments have no defaults; they must come from the config file
// (typically via ${ENV} expansion).
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
