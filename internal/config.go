package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// API auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Store   StoreConfig       `yaml:"store"`
	Admin   AdminConfig       `yaml:"admin"`
	API     APIConfig         `yaml:"api"`
	Intake  IntakeConfig      `yaml:"intake"`
	Uploads UploadsConfig     `yaml:"uploads"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Store, &c.Admin, &c.API, &c.Intake, &c.Uploads} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// BaseURL is the public address of the site, used in log output and
	// upload links handed to MCP clients.
	BaseURL string `yaml:"base_url"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.URL),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}
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

// StoreConfig holds the content store settings.
type StoreConfig struct {
	Path string `yaml:"path"`
	// Watch follows the database file for writes made by other processes.
	Watch bool `yaml:"watch"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// AdminConfig is the single console account.
type AdminConfig struct {
	Email         string        `yaml:"email"`
	PasswordHash  string        `yaml:"password_hash"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

// Validate validates the admin configuration.
func (c *AdminConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.PasswordHash, validation.Required),
		validation.Field(&c.SessionSecret, validation.Required, validation.RuneLength(32, 0)),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
	); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	return nil
}

// APIConfig controls the JSON API authentication.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type APIConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("api: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when the API requires a bearer token.
func (c *APIConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// IntakeConfig tunes the public forms.
type IntakeConfig struct {
	// RatePerMinute throttles submissions per client address; 0 disables it.
	RatePerMinute  int           `yaml:"rate_per_minute"`
	InquiryConfirm time.Duration `yaml:"inquiry_confirm"`
	OrderConfirm   time.Duration `yaml:"order_confirm"`
}

// Validate validates the intake configuration.
func (c *IntakeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.RatePerMinute, validation.Min(0)),
		validation.Field(&c.InquiryConfirm, validation.Min(time.Duration(0))),
		validation.Field(&c.OrderConfirm, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	return nil
}

// UploadsConfig holds the image upload directory.
type UploadsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the uploads configuration.
func (c *UploadsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("uploads: %w", err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values. The
// admin account has no defaults and must be configured.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			BaseURL: "http://localhost:8080",
		},
		Store: StoreConfig{
			Path:  "./content.db",
			Watch: true,
		},
		Admin: AdminConfig{
			SessionTTL: 12 * time.Hour,
		},
		API: APIConfig{
			Mode: AuthModeDisabled,
		},
		Intake: IntakeConfig{
			RatePerMinute:  5,
			InquiryConfirm: 3 * time.Second,
			OrderConfirm:   2 * time.Second,
		},
		Uploads: UploadsConfig{
			Path: "./uploads",
		},
	}
}
