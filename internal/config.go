package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Editor  EditorConfig      `yaml:"editor"`
	Events  EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
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

// HTTPConfig holds HTTP server configuration.
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

// StorageConfig holds the path to the saved document directory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
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

// EditorConfig holds the defaults of every editing session.
type EditorConfig struct {
	// HistoryLimit bounds the undo stack; 0 keeps every step.
	HistoryLimit int `yaml:"history_limit"`
	// MaxSessions bounds the live sessions of the HTTP server; 0 is unbounded.
	MaxSessions int          `yaml:"max_sessions"`
	Canvas      CanvasConfig `yaml:"canvas"`
	// MaxImageDimension downscales mask sources whose longer side is larger.
	MaxImageDimension int           `yaml:"max_image_dimension"`
	MaxImageBytes     int64         `yaml:"max_image_bytes"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.HistoryLimit, validation.Min(0)),
		validation.Field(&c.MaxSessions, validation.Min(0)),
		validation.Field(&c.MaxImageDimension, validation.Min(0)),
		validation.Field(&c.MaxImageBytes, validation.Min(int64(0))),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return c.Canvas.Validate()
}

// CanvasConfig is the canvas size of new and cleared documents.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Validate validates the canvas configuration.
func (c *CanvasConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1), validation.Max(10000)),
		validation.Field(&c.Height, validation.Required, validation.Min(1), validation.Max(10000)),
	); err != nil {
		return fmt.Errorf("editor canvas: %w", err)
	}
	return nil
}

// EventsConfig holds SSE configuration.
type EventsConfig struct {
	// CatalogueThrottle is the minimum interval between catalogue.updated events.
	CatalogueThrottle time.Duration `yaml:"catalogue_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogueThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Path: "./documents",
		},
		SQLite: SQLiteConfig{
			Path: "./postframe.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Editor: EditorConfig{
			HistoryLimit:      100,
			MaxSessions:       64,
			Canvas:            CanvasConfig{Width: 1080, Height: 1080},
			MaxImageDimension: 4096,
			MaxImageBytes:     10 << 20,
			FetchTimeout:      30 * time.Second,
		},
		Events: EventsConfig{
			CatalogueThrottle: 2 * time.Second,
		},
	}
}
