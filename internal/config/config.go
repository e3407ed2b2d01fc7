package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Suggest   SuggestConfig   `yaml:"suggest"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Player    PlayerConfig    `yaml:"player"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects where the AppData document lives.
type StoreConfig struct {
	Backend        string         `yaml:"backend"` // file, sqlite or postgres
	Path           string         `yaml:"path"`
	MigrationsPath string         `yaml:"migrations_path"`
	Database       DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`
	Stdout bool   `yaml:"stdout"`
}

type SuggestConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Enabled reports whether the suggestion requester can be used.
func (s SuggestConfig) Enabled() bool {
	return s.APIKey != ""
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type PlayerConfig struct {
	RestExtendSeconds int `yaml:"rest_extend_seconds"`
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	DefaultSuggestURL   = "https://openrouter.ai/api/v1/chat/completions"
	DefaultSuggestModel = "google/gemini-2.0-flash-001"
)

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error. Variables that are already
// set win over the file.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITTRACK_ and underscore-separated paths:
//
//	FITTRACK_SERVER_HOST, FITTRACK_SERVER_PORT,
//	FITTRACK_STORE_BACKEND, FITTRACK_STORE_PATH,
//	FITTRACK_DB_HOST, FITTRACK_DB_PORT, FITTRACK_DB_NAME,
//	FITTRACK_DB_USER, FITTRACK_DB_PASSWORD, FITTRACK_DB_SSLMODE,
//	FITTRACK_AUTH_API_KEY,
//	FITTRACK_LOG_LEVEL, FITTRACK_LOG_FORMAT, FITTRACK_LOG_FILE,
//	FITTRACK_SUGGEST_API_KEY, FITTRACK_SUGGEST_MODEL, FITTRACK_SUGGEST_URL,
//	FITTRACK_TS_ENABLED, FITTRACK_TS_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FITTRACK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FITTRACK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FITTRACK_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("FITTRACK_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("FITTRACK_DB_HOST"); v != "" {
		cfg.Store.Database.Host = v
	}
	if v := os.Getenv("FITTRACK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Store.Database.Port = port
		}
	}
	if v := os.Getenv("FITTRACK_DB_NAME"); v != "" {
		cfg.Store.Database.Name = v
	}
	if v := os.Getenv("FITTRACK_DB_USER"); v != "" {
		cfg.Store.Database.User = v
	}
	if v := os.Getenv("FITTRACK_DB_PASSWORD"); v != "" {
		cfg.Store.Database.Password = v
	}
	if v := os.Getenv("FITTRACK_DB_SSLMODE"); v != "" {
		cfg.Store.Database.SSLMode = v
	}
	if v := os.Getenv("FITTRACK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FITTRACK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FITTRACK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FITTRACK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("FITTRACK_SUGGEST_API_KEY"); v != "" {
		cfg.Suggest.APIKey = v
	}
	if v := os.Getenv("FITTRACK_SUGGEST_MODEL"); v != "" {
		cfg.Suggest.Model = v
	}
	if v := os.Getenv("FITTRACK_SUGGEST_URL"); v != "" {
		cfg.Suggest.URL = v
	}
	if v := os.Getenv("FITTRACK_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("FITTRACK_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendFile
	}
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case BackendFile:
			cfg.Store.Path = "data/db.json"
		case BackendSQLite:
			cfg.Store.Path = "data/fittrack.db"
		}
	}
	if cfg.Store.MigrationsPath == "" {
		cfg.Store.MigrationsPath = "migrations"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Suggest.URL == "" {
		cfg.Suggest.URL = DefaultSuggestURL
	}
	if cfg.Suggest.Model == "" {
		cfg.Suggest.Model = DefaultSuggestModel
	}
	if cfg.Suggest.TimeoutSeconds == 0 {
		cfg.Suggest.TimeoutSeconds = 60
	}
	if cfg.Player.RestExtendSeconds == 0 {
		cfg.Player.RestExtendSeconds = 15
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "fittrack"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		d := c.Store.Database
		if d.Host == "" {
			return fmt.Errorf("store.database.host is required")
		}
		if d.Port == 0 {
			return fmt.Errorf("store.database.port is required")
		}
		if d.Name == "" {
			return fmt.Errorf("store.database.name is required")
		}
		if d.User == "" {
			return fmt.Errorf("store.database.user is required")
		}
	default:
		return fmt.Errorf("store.backend %q is not one of file, sqlite, postgres", c.Store.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	if c.Player.RestExtendSeconds < 0 {
		return fmt.Errorf("player.rest_extend_seconds must not be negative")
	}
	return nil
}
