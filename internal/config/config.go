package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/logger"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
)

type Config struct {
	AppPort      string `toml:"app_port"`
	StoreBackend string `toml:"store_backend"`
	Collection   string `toml:"collection"`

	DatabaseURL   string `toml:"database_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	SQLitePath    string `toml:"sqlite_path"`
	MySQLDSN      string `toml:"mysql_dsn"`

	// delete confirmation tokens
	ConfirmSecret     string `toml:"confirm_secret"`
	ConfirmTTLSeconds int    `toml:"confirm_ttl_seconds"`

	CountdownIntervalMS  int `toml:"countdown_interval_ms"`
	RemoteTimeoutSeconds int `toml:"remote_timeout_seconds"`

	APIRateLimit         int    `toml:"api_rate_limit"`
	APIRateWindowSeconds int    `toml:"api_rate_window_seconds"`
	AllowedOrigin        string `toml:"allowed_origin"`
	FrontendDir          string `toml:"frontend_dir"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	TZName    string `toml:"tz_name"`
}

// Load reads the config for the server: .env, optional TOML file, then env.
// Invalid configuration is fatal.
func Load() *Config {
	cfg, err := LoadFile(Path())
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", "error", err)
	}
	return cfg
}

// LoadFile is Load without the fatal exit. An empty path skips the TOML layer.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// Path is TODO_CONFIG, else ./todo.toml when present, else "".
func Path() string {
	if p := os.Getenv("TODO_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("todo.toml"); err == nil {
		return "todo.toml"
	}
	return ""
}

func defaults() *Config {
	return &Config{
		AppPort:              "8080",
		StoreBackend:         BackendSQLite,
		Collection:           "tasks",
		MongoDatabase:        "todo",
		SQLitePath:           "todo.db",
		ConfirmTTLSeconds:    120,
		CountdownIntervalMS:  1000,
		RemoteTimeoutSeconds: 10,
		APIRateLimit:         60,
		APIRateWindowSeconds: 60,
		FrontendDir:          "../frontend",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.AppPort, "APP_PORT")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.Collection, "TASKS_COLLECTION")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDatabase, "MONGO_DATABASE")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.MySQLDSN, "MYSQL_DSN")
	setString(&cfg.ConfirmSecret, "CONFIRM_SECRET")
	setInt(&cfg.ConfirmTTLSeconds, "CONFIRM_TTL_SECONDS")
	setInt(&cfg.CountdownIntervalMS, "COUNTDOWN_INTERVAL_MS")
	setInt(&cfg.RemoteTimeoutSeconds, "REMOTE_TIMEOUT_SECONDS")
	setInt(&cfg.APIRateLimit, "API_RATE_LIMIT")
	setInt(&cfg.APIRateWindowSeconds, "API_RATE_WINDOW_SECONDS")
	setString(&cfg.AllowedOrigin, "ALLOWED_ORIGIN")
	setString(&cfg.FrontendDir, "FRONTEND_DIR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.TZName, "TZ_NAME")

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// negative or malformed values keep the current setting
func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
	case BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is not set"))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is not set"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is not set"))
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			errs = append(errs, errors.New("MYSQL_DSN is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.Collection == "" {
		errs = append(errs, errors.New("TASKS_COLLECTION is empty"))
	}
	if c.CountdownIntervalMS <= 0 {
		errs = append(errs, errors.New("COUNTDOWN_INTERVAL_MS must be positive"))
	}
	if c.TZName != "" {
		if _, err := time.LoadLocation(c.TZName); err != nil {
			errs = append(errs, fmt.Errorf("TZ_NAME: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) CountdownInterval() time.Duration {
	return time.Duration(c.CountdownIntervalMS) * time.Millisecond
}

func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

func (c *Config) ConfirmTTL() time.Duration {
	return time.Duration(c.ConfirmTTLSeconds) * time.Second
}

func (c *Config) APIRateWindow() time.Duration {
	return time.Duration(c.APIRateWindowSeconds) * time.Second
}

// Location is the zone datetime-local deadlines are read in.
func (c *Config) Location() *time.Location {
	if c.TZName == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		return time.Local
	}
	return loc
}
