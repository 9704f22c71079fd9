// Package config loads formchat settings from defaults, an optional YAML
// file, .env files and the environment, in increasing precedence. Command
// flags are applied on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfigFile   = "FORMCHAT_CONFIG"
	EnvAPIURL       = "FORMCHAT_API_URL"
	EnvFrontendURL  = "FORMCHAT_FRONTEND_URL"
	EnvToken        = "FORMCHAT_TOKEN"
	EnvSessionFile  = "FORMCHAT_SESSION_FILE"
	EnvLogLevel     = "FORMCHAT_LOG_LEVEL"
	EnvLogPretty    = "FORMCHAT_LOG_PRETTY"
	EnvAddr         = "FORMCHAT_ADDR"
	EnvCallTimeout  = "FORMCHAT_CALL_TIMEOUT"
	EnvQuietPeriod  = "FORMCHAT_QUIET_PERIOD"
	EnvDBPath       = "FORMCHAT_DB_PATH"
	EnvThemeFile    = "FORMCHAT_THEME_FILE"
	EnvThemeVariant = "FORMCHAT_THEME_VARIANT"
	EnvMockAddr     = "FORMCHAT_MOCK_ADDR"
)

// Config holds every setting the binaries read.
type Config struct {
	APIURL       string        `yaml:"api_url"`
	FrontendURL  string        `yaml:"frontend_url"`
	Token        string        `yaml:"token"`
	SessionFile  string        `yaml:"session_file"`
	LogLevel     string        `yaml:"log_level"`
	LogPretty    bool          `yaml:"log_pretty"`
	Addr         string        `yaml:"addr"`
	MockAddr     string        `yaml:"mock_addr"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
	QuietPeriod  time.Duration `yaml:"quiet_period"`
	DBPath       string        `yaml:"db_path"`
	ThemeFile    string        `yaml:"theme_file"`
	ThemeVariant string        `yaml:"theme_variant"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:      "http://localhost:8081/api",
		FrontendURL: "http://localhost:8080",
		SessionFile: defaultSessionFile(),
		LogLevel:    "info",
		Addr:        ":8080",
		MockAddr:    ":8081",
		CallTimeout: 60 * time.Second,
		QuietPeriod: 900 * time.Millisecond,
		DBPath:      "formchat-mock.db",
	}
}

// Loader resolves configuration. The zero value reads the process
// environment and ./.env.
type Loader struct {
	// Getenv overrides os.Getenv.
	Getenv func(string) string
	// EnvFiles are read with godotenv; missing files are skipped. Values
	// already present in the environment win.
	EnvFiles []string
}

// Load resolves configuration with the default loader.
func Load() (Config, error) {
	return Loader{}.Load()
}

// Load resolves defaults, then the YAML file named by FORMCHAT_CONFIG, then
// .env files and the environment.
func (l Loader) Load() (Config, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	files := l.EnvFiles
	if files == nil {
		files = []string{".env"}
	}

	dotenv := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
		for key, value := range values {
			if _, seen := dotenv[key]; !seen {
				dotenv[key] = value
			}
		}
	}
	lookup := func(key string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return dotenv[key]
	}

	cfg := Default()
	if path := lookup(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.CallTimeout < 0 {
		return errors.New("config: call timeout must not be negative")
	}
	if c.QuietPeriod <= 0 {
		return errors.New("config: quiet period must be positive")
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api url is required")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	setString := func(key string, target *string) {
		if value := strings.TrimSpace(lookup(key)); value != "" {
			*target = value
		}
	}
	setString(EnvAPIURL, &c.APIURL)
	setString(EnvFrontendURL, &c.FrontendURL)
	setString(EnvToken, &c.Token)
	setString(EnvSessionFile, &c.SessionFile)
	setString(EnvLogLevel, &c.LogLevel)
	setString(EnvAddr, &c.Addr)
	setString(EnvMockAddr, &c.MockAddr)
	setString(EnvDBPath, &c.DBPath)
	setString(EnvThemeFile, &c.ThemeFile)
	setString(EnvThemeVariant, &c.ThemeVariant)

	if value := strings.TrimSpace(lookup(EnvLogPretty)); value != "" {
		pretty, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvLogPretty, err)
		}
		c.LogPretty = pretty
	}
	for key, target := range map[string]*time.Duration{
		EnvCallTimeout: &c.CallTimeout,
		EnvQuietPeriod: &c.QuietPeriod,
	} {
		value := strings.TrimSpace(lookup(key))
		if value == "" {
			continue
		}
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*target = d
	}
	return nil
}

// parseDuration accepts Go durations and bare milliseconds.
func parseDuration(value string) (time.Duration, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".formchat-session.json"
	}
	return filepath.Join(dir, "formchat", "session.json")
}
