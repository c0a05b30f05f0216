package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tagscan/internal/apperr"
	"github.com/starford/tagscan/internal/inline"
	"github.com/starford/tagscan/internal/vault"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Inline engines.
const (
	EngineRipgrep = "rg"
	EngineBuiltin = "builtin"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Scan   ScanConfig        `yaml:"scan"`
	Inline InlineConfig      `yaml:"inline"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	if err := c.Inline.Validate(); err != nil {
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

// VaultConfig holds the path to the notes directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate reports apperr.ErrMissingVault when no path is configured.
func (c *VaultConfig) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return apperr.ErrMissingVault
	}
	return nil
}

// ScanConfig controls note collection.
type ScanConfig struct {
	// Extension marks a file as a note; matched case-sensitively.
	Extension string `yaml:"extension"`
	// Workers bounds concurrent note parsing; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Extension, validation.Required, validation.By(func(v any) error {
			if s, _ := v.(string); !strings.HasPrefix(s, ".") {
				return fmt.Errorf("must start with a dot")
			}
			return nil
		})),
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

// InlineConfig controls inline #tag scanning.
type InlineConfig struct {
	Enabled bool   `yaml:"enabled"`
	Engine  string `yaml:"engine"`
	// Binary is the ripgrep executable for the rg engine.
	Binary string `yaml:"binary"`
}

// Validate validates the inline configuration.
func (c *InlineConfig) Validate() error {
	if c.Engine == "" {
		c.Engine = EngineRipgrep
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Engine, validation.In(EngineRipgrep, EngineBuiltin)),
	)
}

// Scanner builds the configured inline scanner.
func (c *InlineConfig) Scanner(ext string) (inline.Scanner, error) {
	switch c.Engine {
	case "", EngineRipgrep:
		return inline.Ripgrep{Binary: c.Binary}, nil
	case EngineBuiltin:
		return inline.Builtin{Ext: ext}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownEngine, c.Engine)
	}
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// NewDefaultConfig returns a new Config with sensible default values. The
// vault path is left empty; it must come from a flag, the environment or a
// config file.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Scan: ScanConfig{
			Extension: vault.DefaultExt,
		},
		Inline: InlineConfig{
			Engine: EngineRipgrep,
			Binary: inline.DefaultBinary,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
