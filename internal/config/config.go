package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	APIBaseURL     string        `yaml:"api_base_url"`
	APITimeout     time.Duration `yaml:"api_timeout"`
	APIRateLimit   float64       `yaml:"api_rate_limit"`
	APIBurst       int           `yaml:"api_burst"`
	ProtectedPaths []string      `yaml:"protected_paths"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	PageSize       int           `yaml:"page_size"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		Env:            "development",
		APIBaseURL:     "http://localhost:7777",
		APITimeout:     15 * time.Second,
		APIRateLimit:   20,
		APIBurst:       40,
		ProtectedPaths: []string{"/dashboard/**"},
		LogLevel:       "info",
		LogFormat:      "text",
		PageSize:       10,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and the environment, in that order of precedence.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config file: %w", err)
		}
		err = cfg.overlay(f)
		f.Close()
		if err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", cfg.APITimeout); err != nil {
		return Config{}, err
	}
	if cfg.APIRateLimit, err = getFloat("API_RATE_LIMIT", cfg.APIRateLimit); err != nil {
		return Config{}, err
	}
	if cfg.APIBurst, err = getInt("API_BURST", cfg.APIBurst); err != nil {
		return Config{}, err
	}
	if cfg.PageSize, err = getInt("PAGE_SIZE", cfg.PageSize); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", cfg.CookieSecure); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("PROTECTED_PATHS"); v != "" {
		cfg.ProtectedPaths = splitList(v)
	}

	if cfg.Env == "production" && !cfg.CookieSecure {
		slog.Warn("COOKIE_SECURE forced on in production")
		cfg.CookieSecure = true
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return cfg, nil
}

func (c *Config) overlay(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
