// Package config loads bookshelf server configuration from flags, environment
// variables, a .env file and an optional YAML file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session backends.
const (
	SessionBackendBadger = "badger"
	SessionBackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Redis     RedisConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// IsProduction reports whether the server runs in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Environment == EnvProduction
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string
	Port           string        // 4000 in development, 4001 in production
	ReadTimeout    time.Duration // default 15s
	WriteTimeout   time.Duration // default 15s
	IdleTimeout    time.Duration // default 60s
	AllowedOrigins []string      // CORS origins for the web client
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds relational store configuration.
type DatabaseConfig struct {
	Path string
}

// SessionConfig holds server-side session configuration.
type SessionConfig struct {
	Backend       string // badger or redis
	DataPath      string // badger directory
	TTL           time.Duration
	CookieName    string
	SecretKeyPath string // directory holding the cookie sealing key
}

// RedisConfig holds redis connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SearchConfig holds full-text search configuration. An empty DataPath disables the index.
type SearchConfig struct {
	DataPath string
}

// RateLimitConfig holds login rate limiting configuration.
type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// fileConfig mirrors the YAML config file. Every field is optional.
type fileConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	Server      struct {
		Host           string   `yaml:"host"`
		Port           string   `yaml:"port"`
		ReadTimeout    string   `yaml:"read_timeout"`
		WriteTimeout   string   `yaml:"write_timeout"`
		IdleTimeout    string   `yaml:"idle_timeout"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Session struct {
		Backend       string `yaml:"backend"`
		DataPath      string `yaml:"data_path"`
		TTL           string `yaml:"ttl"`
		CookieName    string `yaml:"cookie_name"`
		SecretKeyPath string `yaml:"secret_key_path"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Search struct {
		DataPath string `yaml:"data_path"`
	} `yaml:"search"`
	RateLimit struct {
		LoginPerMinute int `yaml:"login_per_minute"`
		LoginBurst     int `yaml:"login_burst"`
	} `yaml:"rate_limit"`
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. YAML config file.
// 5. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookshelf", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	configFile := fs.String("config", "", "Path to YAML config file")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	host := fs.String("host", "", "Listen host (default: all interfaces)")
	port := fs.String("port", "", "Server port (default: 4000, 4001 in production)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	origins := fs.String("allowed-origins", "", "Comma separated CORS origins")

	dbPath := fs.String("db", "", "Path to the sqlite database")

	sessionBackend := fs.String("session-backend", "", "Session store (badger, redis)")
	sessionPath := fs.String("session-path", "", "Directory for the badger session store")
	sessionTTL := fs.String("session-ttl", "", "Session lifetime (default: 168h)")
	keyPath := fs.String("secret-key-path", "", "Directory holding the cookie sealing key")

	redisAddr := fs.String("redis-addr", "", "Redis address for the redis session backend")
	searchPath := fs.String("search-path", "", "Directory for the full-text index (empty disables)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env file is fine.
	_ = loadEnvFile(*envFile)

	var file fileConfig
	if path := getConfigValue(*configFile, "BOOKSHELF_CONFIG", ""); path != "" {
		if err := loadYAMLFile(path, &file); err != nil {
			return nil, err
		}
	}

	environment := getConfigValue(*env, "ENV", or(file.Environment, EnvDevelopment))
	defaultPort := "4000"
	if environment == EnvProduction {
		defaultPort = "4001"
	}
	dataDir := "./data"

	cfg := &Config{
		App: AppConfig{
			Environment: environment,
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", or(file.LogLevel, "info")),
		},
		Server: ServerConfig{
			Host:           getConfigValue(*host, "SERVER_HOST", file.Server.Host),
			Port:           getConfigValue(*port, "PORT", or(file.Server.Port, defaultPort)),
			AllowedOrigins: splitList(getConfigValue(*origins, "ALLOWED_ORIGINS", strings.Join(file.Server.AllowedOrigins, ","))),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DATABASE_PATH", or(file.Database.Path, filepath.Join(dataDir, "bookshelf.db"))),
		},
		Session: SessionConfig{
			Backend:       getConfigValue(*sessionBackend, "SESSION_BACKEND", or(file.Session.Backend, SessionBackendBadger)),
			DataPath:      getConfigValue(*sessionPath, "SESSION_PATH", or(file.Session.DataPath, filepath.Join(dataDir, "sessions"))),
			CookieName:    getConfigValue("", "SESSION_COOKIE_NAME", or(file.Session.CookieName, "bookshelf_session")),
			SecretKeyPath: getConfigValue(*keyPath, "SESSION_SECRET_PATH", or(file.Session.SecretKeyPath, dataDir)),
		},
		Redis: RedisConfig{
			Addr:     getConfigValue(*redisAddr, "REDIS_ADDR", file.Redis.Addr),
			Password: getConfigValue("", "REDIS_PASSWORD", file.Redis.Password),
			DB:       getIntConfigValue("", "REDIS_DB", file.Redis.DB),
		},
		Search: SearchConfig{
			DataPath: getConfigValue(*searchPath, "SEARCH_PATH", or(file.Search.DataPath, filepath.Join(dataDir, "search"))),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getIntConfigValue("", "LOGIN_RATE_PER_MINUTE", orInt(file.RateLimit.LoginPerMinute, 10)),
			LoginBurst:     getIntConfigValue("", "LOGIN_RATE_BURST", orInt(file.RateLimit.LoginBurst, 5)),
		},
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"read timeout", getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", or(file.Server.ReadTimeout, "15s")), &cfg.Server.ReadTimeout},
		{"write timeout", getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", or(file.Server.WriteTimeout, "15s")), &cfg.Server.WriteTimeout},
		{"idle timeout", getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", or(file.Server.IdleTimeout, "60s")), &cfg.Server.IdleTimeout},
		{"session ttl", getConfigValue(*sessionTTL, "SESSION_TTL", or(file.Session.TTL, "168h")), &cfg.Session.TTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		*d.dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that config values are present and consistent.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case EnvDevelopment, EnvProduction:
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}
	if c.Database.Path == "" {
		return errors.New("database path cannot be empty")
	}

	switch c.Session.Backend {
	case SessionBackendBadger:
		if c.Session.DataPath == "" {
			return errors.New("session path is required for the badger backend")
		}
	case SessionBackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be badger or redis)", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.RateLimit.LoginPerMinute <= 0 || c.RateLimit.LoginBurst <= 0 {
		return errors.New("login rate limit values must be positive")
	}

	return nil
}

// loadYAMLFile reads a YAML config file into dst.
func loadYAMLFile(path string, dst *fileConfig) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file without overriding
// variables already present in the environment.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
