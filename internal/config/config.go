// Package config provides Viper-based configuration loading for the adventure daemon.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

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

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// Addr is the "host:port" of a single Redis instance.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// NATSConfig holds the NATS connection and the subjects the feed listens on.
type NATSConfig struct {
	URL string `mapstructure:"url"`
	// OutcomeSubject carries resolved encounter outcomes.
	OutcomeSubject string `mapstructure:"outcome_subject"`
	// StartSubject carries encounter start requests; replies hold the encounter.
	StartSubject string `mapstructure:"start_subject"`
	// Queue is the queue group shared by daemon replicas. Empty disables queueing.
	Queue string `mapstructure:"queue"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// AdventureConfig holds game engine settings.
type AdventureConfig struct {
	// ResultsLength is how many encounter outcomes each group remembers.
	ResultsLength int `mapstructure:"results_length"`
	// Store selects the character blob store: "postgres" or "redis".
	Store string `mapstructure:"store"`
	// Lock selects the per-character lock: "memory" or "redis".
	Lock string `mapstructure:"lock"`
	// LockTTL bounds how long a redis lock survives a crashed holder.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// LockWait bounds how long a mutation waits for a character's lock.
	LockWait time.Duration `mapstructure:"lock_wait"`
	// BestiaryDir holds the monster YAML files.
	BestiaryDir string `mapstructure:"bestiary_dir"`
	// ScriptDir holds global Lua hooks. Empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit bounds each hook call. Zero uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Adventure AdventureConfig `mapstructure:"adventure"`
}

// NeedsRedis reports whether the configured store or lock uses Redis.
func (c Config) NeedsRedis() bool {
	return c.Adventure.Store == "redis" || c.Adventure.Lock == "redis"
}

// NeedsPostgres reports whether the configured store uses PostgreSQL.
// Balances always live in PostgreSQL when it is configured.
func (c Config) NeedsPostgres() bool {
	return c.Adventure.Store == "postgres"
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.NeedsPostgres() {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.NeedsRedis() {
		if err := validateRedis(c.Redis); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateNATS(c.NATS); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAdventure(c.Adventure); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if r.PoolSize < 0 {
		errs = append(errs, fmt.Sprintf("redis.pool_size must be >= 0, got %d", r.PoolSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateNATS(n NATSConfig) error {
	var errs []string
	if n.URL == "" {
		errs = append(errs, "nats.url must not be empty")
	}
	if n.OutcomeSubject == "" {
		errs = append(errs, "nats.outcome_subject must not be empty")
	}
	if n.StartSubject == "" {
		errs = append(errs, "nats.start_subject must not be empty")
	}
	if n.OutcomeSubject != "" && n.OutcomeSubject == n.StartSubject {
		errs = append(errs, "nats.outcome_subject and nats.start_subject must differ")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAdventure(a AdventureConfig) error {
	var errs []string
	if a.ResultsLength < 1 {
		errs = append(errs, fmt.Sprintf("adventure.results_length must be >= 1, got %d", a.ResultsLength))
	}
	validStores := map[string]bool{"postgres": true, "redis": true}
	if !validStores[a.Store] {
		errs = append(errs, fmt.Sprintf("adventure.store must be one of [postgres, redis], got %q", a.Store))
	}
	validLocks := map[string]bool{"memory": true, "redis": true}
	if !validLocks[a.Lock] {
		errs = append(errs, fmt.Sprintf("adventure.lock must be one of [memory, redis], got %q", a.Lock))
	}
	if a.Lock == "redis" && a.LockTTL <= 0 {
		errs = append(errs, "adventure.lock_ttl must be positive with a redis lock")
	}
	if a.LockWait <= 0 {
		errs = append(errs, "adventure.lock_wait must be positive")
	}
	if a.BestiaryDir == "" {
		errs = append(errs, "adventure.bestiary_dir must not be empty")
	}
	if a.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("adventure.script_instruction_limit must be >= 0, got %d", a.ScriptInstructionLimit))
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
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ADVENTURE_ prefix
	v.SetEnvPrefix("ADVENTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
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

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "adventure")
	v.SetDefault("database.password", "adventure")
	v.SetDefault("database.name", "adventure")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.outcome_subject", "adventure.outcome")
	v.SetDefault("nats.start_subject", "adventure.start")
	v.SetDefault("nats.queue", "adventured")

	v.SetDefault("metrics.addr", ":9102")

	v.SetDefault("adventure.results_length", 20)
	v.SetDefault("adventure.store", "postgres")
	v.SetDefault("adventure.lock", "memory")
	v.SetDefault("adventure.lock_ttl", "10s")
	v.SetDefault("adventure.lock_wait", "5s")
	v.SetDefault("adventure.bestiary_dir", "content/bestiary")
	v.SetDefault("adventure.script_dir", "content/scripts")
	v.SetDefault("adventure.script_instruction_limit", 0)
}
