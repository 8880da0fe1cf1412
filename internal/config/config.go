// Package config loads service settings.
//
// Settings are resolved in three layers: built-in defaults, then an optional
// YAML file (path from the --config flag or $MOODS_CONFIG), then environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	Addr      string        `yaml:"addr"`
	WebDir    string        `yaml:"web_dir"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	Storage   StorageConfig `yaml:"storage"`
	Moods     MoodsConfig   `yaml:"moods"`
	Auth      AuthConfig    `yaml:"auth"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Path is the directory (file), or database file (bolt, sqlite).
	Path string `yaml:"path"`
	// DSN is the connection string for postgres.
	DSN string `yaml:"dsn"`
	// Key is the storage key the mood document lives under.
	Key string `yaml:"key"`
}

// MoodsConfig selects the provider variant.
type MoodsConfig struct {
	InsertOrder    string `yaml:"insert_order"`
	DeletesEnabled bool   `yaml:"deletes_enabled"`
}

// AuthConfig configures the owner access gate.
type AuthConfig struct {
	Disabled          bool       `yaml:"disabled"`
	OwnerUsername     string     `yaml:"owner_username"`
	OwnerPasswordHash string     `yaml:"owner_password_hash"`
	OIDC              OIDCConfig `yaml:"oidc"`
}

// OIDCConfig enables SSO when Issuer is set.
type OIDCConfig struct {
	Issuer       string `yaml:"issuer"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether SSO is configured.
func (o OIDCConfig) Enabled() bool {
	return o.Issuer != ""
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Addr:      ":8080",
		WebDir:    "web",
		LogLevel:  "info",
		LogFormat: "json",
		Storage: StorageConfig{
			Driver: DriverFile,
			Key:    "my-app-data",
		},
		Moods: MoodsConfig{
			InsertOrder:    "prepend",
			DeletesEnabled: true,
		},
	}
}

// Load resolves the configuration. An empty path falls back to
// $MOODS_CONFIG; with neither set only defaults and environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MOODS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// Unmarshalling over the defaults keeps every field the file omits.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "ADDR")
	setString(&c.WebDir, "WEB_DIR")
	setString(&c.LogLevel, "MOODS_LOG_LEVEL")
	setString(&c.LogFormat, "MOODS_LOG_FORMAT")
	setString(&c.Storage.Driver, "MOODS_STORAGE_DRIVER")
	setString(&c.Storage.Path, "MOODS_STORAGE_PATH")
	setString(&c.Storage.DSN, "DATABASE_URL")
	setString(&c.Storage.Key, "MOODS_STORAGE_KEY")
	setString(&c.Moods.InsertOrder, "MOODS_INSERT_ORDER")
	setString(&c.Auth.OwnerUsername, "MOODS_OWNER_USERNAME")
	setString(&c.Auth.OwnerPasswordHash, "MOODS_OWNER_PASSWORD_HASH")
	setString(&c.Auth.OIDC.Issuer, "OIDC_ISSUER")
	setString(&c.Auth.OIDC.ClientID, "OIDC_CLIENT_ID")
	setString(&c.Auth.OIDC.ClientSecret, "OIDC_CLIENT_SECRET")
	setString(&c.Auth.OIDC.RedirectURL, "OIDC_REDIRECT_URL")

	if err := setBool(&c.Moods.DeletesEnabled, "MOODS_DELETES_ENABLED"); err != nil {
		return err
	}
	return setBool(&c.Auth.Disabled, "MOODS_AUTH_DISABLED")
}

// applyDefaults fills values that depend on other settings.
func (c *Config) applyDefaults() {
	if c.Storage.Key == "" {
		c.Storage.Key = "my-app-data"
	}
	if c.Storage.Path != "" {
		return
	}
	switch c.Storage.Driver {
	case DriverFile:
		c.Storage.Path = "data"
	case DriverBolt:
		c.Storage.Path = "moods.db"
	case DriverSQLite:
		c.Storage.Path = "moods.sqlite"
	}
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverBolt, DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage driver postgres requires a dsn (DATABASE_URL)")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Moods.InsertOrder {
	case "", "prepend", "append":
	default:
		return fmt.Errorf("insert_order must be prepend or append, got %q", c.Moods.InsertOrder)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}

	if c.Auth.OIDC.Enabled() && (c.Auth.OIDC.ClientID == "" || c.Auth.OIDC.RedirectURL == "") {
		return errors.New("oidc requires client_id and redirect_url")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
