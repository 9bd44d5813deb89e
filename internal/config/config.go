// Package config provides Viper-based configuration loading for the flat check server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server storage modes.
const (
	// ModePersistent stores chat cards and world settings in PostgreSQL.
	ModePersistent = "persistent"
	// ModeEphemeral keeps chat cards and world settings in memory.
	ModeEphemeral = "ephemeral"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Mode is the storage mode: "persistent" or "ephemeral".
	Mode string `mapstructure:"mode"`
	// ShutdownTimeout bounds graceful shutdown of the gRPC server and stores.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// HealthInterval is how often flatcheckd pings the database.
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GRPCConfig holds the flat check gRPC listener settings.
type GRPCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// GridConfig describes the scene grid used for distance checks.
type GridConfig struct {
	// Size is the pixel width of one grid square.
	Size float64 `mapstructure:"size"`
	// Distance is the number of feet one grid square spans.
	Distance int `mapstructure:"distance"`
}

// RedisConfig holds the optional settings cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// SettingsTTL is how long a cached world setting stays valid.
	SettingsTTL time.Duration `mapstructure:"settings_ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// FlatCheckConfig holds the module behavior settings.
type FlatCheckConfig struct {
	// HideRollValue is the world default for showing Success/Failure text
	// instead of the rolled number. A stored world setting overrides it.
	HideRollValue bool `mapstructure:"hide_roll_value"`
	// Locale selects the chat card catalog, e.g. "en-US".
	Locale string `mapstructure:"locale"`
	// WorldID scopes stored settings.
	WorldID string `mapstructure:"world_id"`
	// ConditionsDir holds the condition definition YAML files.
	ConditionsDir string `mapstructure:"conditions_dir"`
	// ScriptsDir holds one sub-directory of Lua files per add-on; empty disables add-ons.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit caps Lua opcodes per load or hook call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Grid      GridConfig      `mapstructure:"grid"`
	FlatCheck FlatCheckConfig `mapstructure:"flatcheck"`
}

// Validate checks all configuration invariants. Database settings are only
// checked in persistent mode.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Server.Mode == ModePersistent {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGRPC(c.GRPC); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRedis(c.Redis); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGrid(c.Grid); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateFlatCheck(c.FlatCheck); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Mode != ModePersistent && s.Mode != ModeEphemeral {
		return fmt.Errorf("server.mode must be one of [persistent, ephemeral], got %q", s.Mode)
	}
	if s.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if d.HealthInterval <= 0 {
		errs = append(errs, fmt.Sprintf("database.health_interval must be > 0, got %s", d.HealthInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGRPC(g GRPCConfig) error {
	var errs []string
	if g.Host == "" {
		errs = append(errs, "grpc.host must not be empty")
	}
	if g.Port < 1 || g.Port > 65535 {
		errs = append(errs, fmt.Sprintf("grpc.port must be 1-65535, got %d", g.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	if !r.Enabled() {
		return nil
	}
	var errs []string
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if r.SettingsTTL <= 0 {
		errs = append(errs, fmt.Sprintf("redis.settings_ttl must be > 0, got %s", r.SettingsTTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGrid(g GridConfig) error {
	var errs []string
	if g.Size <= 0 {
		errs = append(errs, fmt.Sprintf("grid.size must be > 0, got %v", g.Size))
	}
	if g.Distance <= 0 {
		errs = append(errs, fmt.Sprintf("grid.distance must be > 0, got %d", g.Distance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateFlatCheck(f FlatCheckConfig) error {
	var errs []string
	if f.Locale == "" {
		errs = append(errs, "flatcheck.locale must not be empty")
	}
	if f.WorldID == "" {
		errs = append(errs, "flatcheck.world_id must not be empty")
	}
	if f.ConditionsDir == "" {
		errs = append(errs, "flatcheck.conditions_dir must not be empty")
	}
	if f.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("flatcheck.script_instruction_limit must be >= 0, got %d", f.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and FLATCHECK_ environment
// overrides applied, ready for a config file or direct use.
//
// Postcondition: Returns a non-nil Viper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FLATCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", ModePersistent)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "flatcheck")
	v.SetDefault("database.password", "flatcheck")
	v.SetDefault("database.name", "flatcheck")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.health_interval", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("grpc.host", "127.0.0.1")
	v.SetDefault("grpc.port", 50061)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.settings_ttl", "30s")

	v.SetDefault("grid.size", 100)
	v.SetDefault("grid.distance", 5)

	v.SetDefault("flatcheck.hide_roll_value", false)
	v.SetDefault("flatcheck.locale", "en-US")
	v.SetDefault("flatcheck.world_id", "default")
	v.SetDefault("flatcheck.conditions_dir", "content/conditions")
	v.SetDefault("flatcheck.scripts_dir", "")
	v.SetDefault("flatcheck.script_instruction_limit", 0)
}
