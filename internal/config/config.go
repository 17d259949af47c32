// Package config loads LiveBoard settings from an optional YAML file and
// LIVEBOARD_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LIVEBOARD_"

type Config struct {
	// Board shared by this session.
	BoardID  string `yaml:"board_id" validate:"required,max=128,excludesall=/\\?#"`
	UserName string `yaml:"user_name" validate:"max=64"`

	// RelayURL is the relay a client joins. Empty means host a relay locally.
	RelayURL   string `yaml:"relay_url"`
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	Advertise  bool   `yaml:"advertise"`

	// Board content is kept under DataDir unless PersistURL names a board
	// store to use instead.
	DataDir    string `yaml:"data_dir" validate:"required"`
	PersistURL string `yaml:"persist_url" validate:"omitempty,url"`

	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`
	HistoryLimit int    `yaml:"history_limit" validate:"min=1,max=1000"`
}

func Default() *Config {
	return &Config{
		BoardID:      "default",
		UserName:     defaultUserName(),
		ListenAddr:   ":8888",
		Advertise:    true,
		DataDir:      "boards",
		LogLevel:     "info",
		HistoryLimit: 50,
	}
}

// Load reads path (skipped when empty or missing), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	cfg.loadEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnvironment() {
	c.BoardID = getEnv("BOARD_ID", c.BoardID)
	c.UserName = getEnv("USER_NAME", c.UserName)
	c.RelayURL = getEnv("RELAY_URL", c.RelayURL)
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.Advertise = getEnvBool("ADVERTISE", c.Advertise)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.PersistURL = getEnv("PERSIST_URL", c.PersistURL)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.HistoryLimit = getEnvInt("HISTORY_LIMIT", c.HistoryLimit)
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Hosting reports whether this process runs the relay itself.
func (c *Config) Hosting() bool {
	return c.RelayURL == ""
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func defaultUserName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "guest"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
