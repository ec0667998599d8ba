// Package config loads platformseed configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for platformseed.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// DataPath is the root directory for generated JSON caches.
	// Each app writes to <DataPath>/generated/<app>/<entity>.json.
	DataPath string `yaml:"data_path" env:"DATA_PATH" env-default:"data"`

	// Concurrency is the default number of in-flight create calls per seeder.
	// Individual apps clamp this further where the platform rate-limits harder.
	Concurrency int `yaml:"concurrency" env:"SEED_CONCURRENCY" env-default:"8"`

	LLM LLMConfig `yaml:"llm"`

	Chatwoot       ChatwootConfig `yaml:"chatwoot"`
	FrappeCRM      FrappeConfig   `yaml:"frappecrm" env-prefix:"FRAPPECRM_"`
	FrappeHelpdesk FrappeConfig   `yaml:"frappehelpdesk" env-prefix:"FRAPPEHELPDESK_"`
	FrappeHRMS     FrappeConfig   `yaml:"frappehrms" env-prefix:"FRAPPEHRMS_"`
	Gumroad        GumroadConfig  `yaml:"gumroad"`
	Medusa         MedusaConfig   `yaml:"medusa"`
	OdooHR         OdooConfig     `yaml:"odoohr" env-prefix:"ODOOHR_"`
	OdooSales      OdooConfig     `yaml:"odoosales" env-prefix:"ODOOSALES_"`
	Spree          SpreeConfig    `yaml:"spree"`
	Supabase       SupabaseConfig `yaml:"supabase"`
	Teable         TeableConfig   `yaml:"teable"`
	GitLab         GitLabConfig   `yaml:"gitlab"`
}

// LLMConfig selects the fixture-generation model endpoint.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"anthropic"`
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"claude-sonnet-4-5-20250929"`
	// MaxTokens bounds a single generation response.
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4000"`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.7"`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
}

// ChatwootConfig holds Chatwoot REST and direct-database access settings.
type ChatwootConfig struct {
	URL           string `yaml:"url" env:"CHATWOOT_URL" env-default:"http://localhost:3000"`
	AdminEmail    string `yaml:"admin_email" env:"CHATWOOT_ADMIN_EMAIL" env-default:"john@acme.inc"`
	AdminPassword string `yaml:"-" env:"CHATWOOT_ADMIN_PASSWORD"`
	AccountID     int    `yaml:"account_id" env:"CHATWOOT_ACCOUNT_ID" env-default:"1"`

	Postgres PostgresConfig `yaml:"postgres" env-prefix:"CHATWOOT_PG"`
}

// FrappeConfig holds connection settings for one Frappe site
// (CRM, Helpdesk and HRMS are separate sites with the same API shape).
type FrappeConfig struct {
	URL           string `yaml:"url" env:"URL" env-default:"http://localhost:8000"`
	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"Administrator"`
	AdminPassword string `yaml:"-" env:"ADMIN_PASSWORD"`
}

// GumroadConfig holds Gumroad direct-MySQL access settings.
type GumroadConfig struct {
	MySQL MySQLConfig `yaml:"mysql" env-prefix:"GUMROAD_MYSQL_"`
	// FollowedUserID is the seller account that generated followers follow.
	FollowedUserID int64 `yaml:"followed_user_id" env:"GUMROAD_FOLLOWED_USER_ID" env-default:"1"`
}

// MedusaConfig holds Medusa admin API settings.
type MedusaConfig struct {
	URL           string `yaml:"url" env:"MEDUSA_API_URL" env-default:"http://localhost:9000"`
	AdminEmail    string `yaml:"admin_email" env:"MEDUSA_ADMIN_EMAIL" env-default:"admin@medusa.local"`
	AdminPassword string `yaml:"-" env:"MEDUSA_ADMIN_PASSWORD"`
}

// OdooConfig holds JSON-RPC settings for one Odoo database.
type OdooConfig struct {
	URL      string `yaml:"url" env:"URL" env-default:"http://localhost:8069"`
	Database string `yaml:"database" env:"DATABASE" env-default:"odoo"`
	Username string `yaml:"username" env:"USERNAME" env-default:"admin"`
	Password string `yaml:"-" env:"PASSWORD"`
}

// SpreeConfig holds Spree direct-Postgres access settings.
type SpreeConfig struct {
	Postgres PostgresConfig `yaml:"postgres" env-prefix:"SPREE_PG"`
}

// SupabaseConfig holds Supabase admin API and direct-Postgres settings.
type SupabaseConfig struct {
	URL            string `yaml:"url" env:"SUPABASE_URL" env-default:"http://localhost:8000"`
	ServiceRoleKey string `yaml:"-" env:"SUPABASE_SERVICE_ROLE_KEY"`

	Postgres PostgresConfig `yaml:"postgres" env-prefix:"SUPABASE_PG"`
}

// TeableConfig holds Teable REST settings.
type TeableConfig struct {
	URL      string `yaml:"url" env:"TEABLE_URL" env-default:"http://localhost:3000"`
	Email    string `yaml:"email" env:"TEABLE_EMAIL" env-default:"admin@teable.local"`
	Password string `yaml:"-" env:"TEABLE_PASSWORD"`
}

// GitLabConfig holds GitLab REST and direct-Postgres settings.
type GitLabConfig struct {
	URL   string `yaml:"url" env:"GITLAB_URL" env-default:"http://localhost:8929"`
	Token string `yaml:"-" env:"GITLAB_TOKEN"`

	Postgres PostgresConfig `yaml:"postgres" env-prefix:"GITLAB_PG"`
}

// PostgresConfig holds PostgreSQL connection settings for platforms
// seeded by direct database writes.
type PostgresConfig struct {
	Host           string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PORT" env-default:"5432"`
	User           string `yaml:"user" env:"USER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PASSWORD"`
	Database       string `yaml:"database" env:"DATABASE" env-default:"postgres"`
	SSLMode        string `yaml:"ssl_mode" env:"SSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"MAX_CONNECTIONS" env-default:"10"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MySQLConfig holds MySQL connection settings (Gumroad direct writes).
type MySQLConfig struct {
	Host     string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PORT" env-default:"3306"`
	User     string `yaml:"user" env:"USER" env-default:"root"`
	Password string `yaml:"-" env:"PASSWORD"`
	Database string `yaml:"database" env:"DATABASE" env-default:"gumroad"`
}

// DSN returns a go-sql-driver/mysql data source name.
func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Database)
}

// GeneratedDir returns the cache directory for one app.
func (c *Config) GeneratedDir(app string) string {
	return filepath.Join(c.DataPath, "generated", app)
}

// Load reads configuration from config.yaml with environment variable
// overrides. A .env file in the working directory is loaded first, if
// present, so local runs do not need to export secrets by hand.
func Load() (*Config, error) {
	// Missing .env is fine; any other read error is not.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return cfg, nil
}
