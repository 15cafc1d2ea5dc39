package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           int
	DatabaseURL    string
	LogLevel       string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiProxyURL string
	NatsURL        string
	NatsToken      string
	APIToken       string
	AdminUser      string
	AdminPassword  string
}

// fileConfig is the optional YAML overlay pointed at by ZAIKAN_CONFIG.
// Precedence per value: environment, then file, then built-in default.
type fileConfig struct {
	Port        int    `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`
	Gemini      struct {
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		ProxyURL string `yaml:"proxy_url"`
	} `yaml:"gemini"`
	Nats struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"nats"`
	APIToken string `yaml:"api_token"`
	Admin    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("ZAIKAN_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	return Config{
		Port:           envInt("ZAIKAN_PORT", fallbackInt(fc.Port, 8460)),
		DatabaseURL:    envStr("DATABASE_URL", fc.DatabaseURL),
		LogLevel:       envStr("LOG_LEVEL", fallbackStr(fc.LogLevel, "info")),
		GeminiAPIKey:   envStr("GEMINI_API_KEY", fc.Gemini.APIKey),
		GeminiModel:    envStr("ZAIKAN_MODEL", fallbackStr(fc.Gemini.Model, "gemini-2.0-flash")),
		GeminiProxyURL: envStr("GEMINI_PROXY_URL", fc.Gemini.ProxyURL),
		NatsURL:        envStr("NATS_URL", fc.Nats.URL),
		NatsToken:      envStr("NATS_TOKEN", fc.Nats.Token),
		APIToken:       envStr("ZAIKAN_API_TOKEN", fc.APIToken),
		AdminUser:      envStr("ZAIKAN_ADMIN_USER", fallbackStr(fc.Admin.Username, "admin")),
		AdminPassword:  envStr("ZAIKAN_ADMIN_PASSWORD", fc.Admin.Password),
	}, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func fallbackStr(fileValue, def string) string {
	if fileValue != "" {
		return fileValue
	}
	return def
}

func fallbackInt(fileValue, def int) int {
	if fileValue != 0 {
		return fileValue
	}
	return def
}
