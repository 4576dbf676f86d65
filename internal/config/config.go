// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Logs      LogsConfig
	Database  DatabaseConfig
	Server    ServerConfig
	GeoIP     GeoIPConfig
	LogLevel  string
	Profiling bool
}

// LogsConfig describes where access logs live and how they are served.
type LogsConfig struct {
	Dir           string
	Pattern       string
	WatchEnabled  bool
	WatchDebounce time.Duration
	TopN          int
}

// DatabaseConfig holds the catalog database settings.
type DatabaseConfig struct {
	Path         string
	MaxOpenConns int
	ConnMaxLife  time.Duration
	SlowQuery    time.Duration
}

type ServerConfig struct {
	Port    int
	GinMode string
}

// GeoIPConfig lists the optional MaxMind databases.
type GeoIPConfig struct {
	CityDB    string
	CountryDB string
	ASNDB     string
	CacheSize int
}

var defaults = map[string]any{
	"LOG_DIR":           "logs",
	"LOG_PATTERN":       "**/*-*-*",
	"WATCH_ENABLED":     true,
	"WATCH_DEBOUNCE":    "500ms",
	"TOP_N":             100,
	"DB_PATH":           "",
	"DB_MAX_OPEN_CONNS": 4,
	"DB_CONN_MAX_LIFE":  "1h",
	"DB_SLOW_QUERY":     "100ms",
	"SERVER_PORT":       8080,
	"GIN_MODE":          "release",
	"GEOIP_CITY_DB":     "",
	"GEOIP_COUNTRY_DB":  "",
	"GEOIP_ASN_DB":      "",
	"GEOIP_CACHE_SIZE":  10000,
	"LOG_LEVEL":         "info",
	"PROFILING_ENABLED": false,
}

// Load reads .env (if present), then an optional config file, then the
// environment. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Logs: LogsConfig{
			Dir:           v.GetString("LOG_DIR"),
			Pattern:       v.GetString("LOG_PATTERN"),
			WatchEnabled:  v.GetBool("WATCH_ENABLED"),
			WatchDebounce: v.GetDuration("WATCH_DEBOUNCE"),
			TopN:          v.GetInt("TOP_N"),
		},
		Database: DatabaseConfig{
			Path:         v.GetString("DB_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLife:  v.GetDuration("DB_CONN_MAX_LIFE"),
			SlowQuery:    v.GetDuration("DB_SLOW_QUERY"),
		},
		Server: ServerConfig{
			Port:    v.GetInt("SERVER_PORT"),
			GinMode: v.GetString("GIN_MODE"),
		},
		GeoIP: GeoIPConfig{
			CityDB:    v.GetString("GEOIP_CITY_DB"),
			CountryDB: v.GetString("GEOIP_COUNTRY_DB"),
			ASNDB:     v.GetString("GEOIP_ASN_DB"),
			CacheSize: v.GetInt("GEOIP_CACHE_SIZE"),
		},
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		Profiling: v.GetBool("PROFILING_ENABLED"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}
	if c.Logs.TopN <= 0 {
		return fmt.Errorf("invalid TOP_N: %d", c.Logs.TopN)
	}
	if _, ok := levels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}
	if info, err := os.Stat(c.Logs.Dir); err == nil && !info.IsDir() {
		return fmt.Errorf("LOG_DIR is not a directory: %s", c.Logs.Dir)
	}
	return nil
}

var levels = map[string]pterm.LogLevel{
	"trace": pterm.LogLevelTrace,
	"debug": pterm.LogLevelDebug,
	"info":  pterm.LogLevelInfo,
	"warn":  pterm.LogLevelWarn,
	"error": pterm.LogLevelError,
	"fatal": pterm.LogLevelFatal,
}

// PtermLevel maps LOG_LEVEL to a pterm level, defaulting to info.
func (c *Config) PtermLevel() pterm.LogLevel {
	if level, ok := levels[c.LogLevel]; ok {
		return level
	}
	return pterm.LogLevelInfo
}

// NewLogger builds the application logger at the configured level.
func (c *Config) NewLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(c.PtermLevel())
}
