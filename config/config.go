// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of the stats API server.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// RPConfig holds configuration used by the mikerp pipeline commands.
type RPConfig struct {
	DatabaseURL string
	DBUser      string
	DBPass      string
	// RPPass preserves compatibility with existing mikerp env files.
	RPPass    string
	DBHost    string
	DBPort    string
	DBName    string
	DBSSLMode string

	Debug bool

	// Upstream racing data provider.
	ProviderURL  string
	ProviderUser string
	ProviderPass string
	// ProviderRate is the provider's request ceiling per second.
	ProviderRate    float64
	ProviderTimeout time.Duration
	ProviderRetries int

	// MySQL – the legacy rpData database, used only by backfill.
	MySQLDSN string

	// JWT signing secret, used by the token command.
	JWTSecret string

	Aggregation Aggregation
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "padraic")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "rpdata")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "mmrace.app,www.mmrace.app")
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBUser:      v.GetString("DB_USER"),
		DBPass:      v.GetString("DB_PASS"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		Debug:       v.GetBool("DEBUG"),
		Port:        v.GetString("PORT"),
		TLSDomains:  splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// LoadRP reads config shared by the mikerp commands from .env, environment
// variables and, when AGG_CONFIG names one, a YAML file of aggregation
// thresholds. Any invalid threshold is fatal.
func LoadRP() *RPConfig {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "padraic")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "rpdata")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DEBUG", false)
	v.SetDefault("RACING_API_URL", "https://api.theracingapi.com")
	v.SetDefault("RACING_API_RATE", 2.0)
	v.SetDefault("RACING_API_TIMEOUT", "30s")
	v.SetDefault("RACING_API_RETRIES", 3)
	SetAggregationDefaults(v)

	if path := v.GetString("AGG_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("config: reading %s: %v", path, err)
		}
	}

	cfg := &RPConfig{
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBUser:          v.GetString("DB_USER"),
		DBPass:          v.GetString("DB_PASS"),
		RPPass:          v.GetString("RPPASS"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		Debug:           v.GetBool("DEBUG"),
		ProviderURL:     strings.TrimRight(v.GetString("RACING_API_URL"), "/"),
		ProviderUser:    v.GetString("RACING_API_USER"),
		ProviderPass:    v.GetString("RACING_API_PASS"),
		ProviderRate:    v.GetFloat64("RACING_API_RATE"),
		ProviderTimeout: v.GetDuration("RACING_API_TIMEOUT"),
		ProviderRetries: v.GetInt("RACING_API_RETRIES"),
		MySQLDSN:        v.GetString("MYSQL_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		Aggregation:     AggregationFrom(v),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *RPConfig) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	pass := c.DBPass
	if pass == "" {
		pass = c.RPPass
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		pass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
}

func (c *RPConfig) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" && c.RPPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS (or legacy RPPASS) must be set")
	}
	if c.ProviderRate <= 0 {
		log.Fatal("config: RACING_API_RATE must be positive")
	}
	if c.ProviderTimeout <= 0 {
		log.Fatal("config: RACING_API_TIMEOUT must be positive")
	}
	if err := c.Aggregation.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(replacer())
	v.AutomaticEnv()
	return v
}

// replacer maps nested keys such as agg.sire.min_runs to AGG_SIRE_MIN_RUNS.
func replacer() *strings.Replacer { return strings.NewReplacer(".", "_") }

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
