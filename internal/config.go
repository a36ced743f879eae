package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Password hashers.
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Storage  StorageConfig     `yaml:"storage"`
	Auth     AuthConfig        `yaml:"auth"`
	Password PasswordConfig    `yaml:"password"`
	Events   EventsConfig      `yaml:"events"`
	Watch    WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Password.Validate(); err != nil {
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

// StorageConfig selects the key-value backend holding the document and the
// password digest.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	RedisURL    string `yaml:"redis_url"`
	DocumentKey string `yaml:"document_key"`
	PasswordKey string `yaml:"password_key"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = storage.DriverFS
	}
	if c.DocumentKey == "" {
		c.DocumentKey = document.DefaultKey
	}
	if c.PasswordKey == "" {
		c.PasswordKey = auth.DefaultKey
	}
	needsPath := c.Driver == storage.DriverFS || c.Driver == storage.DriverSQLite
	isRedis := c.Driver == storage.DriverRedis
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(
			storage.DriverFS, storage.DriverSQLite, storage.DriverBadger, storage.DriverRedis, storage.DriverMemory)),
		validation.Field(&c.Path, validation.When(needsPath, validation.Required)),
		validation.Field(&c.RedisURL, validation.When(isRedis, validation.Required, is.RequestURL)),
		validation.Field(&c.DocumentKey, validation.By(storageKey)),
		validation.Field(&c.PasswordKey, validation.By(storageKey)),
	); err != nil {
		return err
	}
	if c.DocumentKey == c.PasswordKey {
		return fmt.Errorf("storage: document_key and password_key must differ")
	}
	return nil
}

func storageKey(v any) error {
	s, _ := v.(string)
	return storage.ValidateKey(s)
}

// Options converts the configuration into backend options.
func (c *StorageConfig) Options() storage.Options {
	return storage.Options{Driver: c.Driver, Path: c.Path, RedisURL: c.RedisURL}
}

// Watchable reports whether the backend keeps each key in its own file.
func (c *StorageConfig) Watchable() bool {
	return c.Driver == storage.DriverFS
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the HTTP API is protected:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// This is independent of the vault password, which guards edits.
type AuthConfig struct {
	Mode         string             `yaml:"mode"`
	Token        string             `yaml:"token"`
	PasswordRate PasswordRateConfig `yaml:"password_rate"`
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
	return c.PasswordRate.Validate()
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// Password rate defaults, used when the limiter is enabled without values.
const (
	DefaultPasswordBurst    = 5
	DefaultPasswordInterval = 2 * time.Second
)

// PasswordRateConfig throttles wrong passwords on the HTTP API. Off by
// default. Only failed attempts spend the budget: Burst failures are allowed,
// then one more per Interval.
type PasswordRateConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Burst    int           `yaml:"burst"`
	Interval time.Duration `yaml:"interval"`
}

// Validate fills defaults and validates the limiter settings.
func (c *PasswordRateConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Burst == 0 {
		c.Burst = DefaultPasswordBurst
	}
	if c.Interval == 0 {
		c.Interval = DefaultPasswordInterval
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Burst, validation.Min(1)),
		validation.Field(&c.Interval, validation.Min(time.Millisecond)),
	)
}

// PasswordConfig picks how new vault passwords are hashed. Existing SHA-256
// digests keep verifying after switching to bcrypt.
type PasswordConfig struct {
	Hasher     string `yaml:"hasher"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

// Validate validates the password configuration.
func (c *PasswordConfig) Validate() error {
	if c.Hasher == "" {
		c.Hasher = HasherSHA256
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Hasher, validation.In(HasherSHA256, HasherBcrypt)),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
}

// EventsConfig tunes the server-sent event stream.
type EventsConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// WatchConfig toggles reloading on external file changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
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
			Driver:      storage.DriverFS,
			Path:        "./data",
			DocumentKey: document.DefaultKey,
			PasswordKey: auth.DefaultKey,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Password: PasswordConfig{
			Hasher:     HasherSHA256,
			BcryptCost: bcrypt.DefaultCost,
		},
		Events: EventsConfig{
			Throttle: time.Second,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
	}
}
