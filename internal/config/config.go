package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joseda-hg/tasktracker/internal/autoclose"
	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	envPrefix = "TASKTRACKER"
)

type Config struct {
	DBDriver          string      `json:"db_driver" mapstructure:"db_driver"`
	DBPath            string      `json:"db_path" mapstructure:"db_path"`
	DatabaseURL       string      `json:"database_url,omitempty" mapstructure:"database_url"`
	WebPort           int         `json:"web_port" mapstructure:"web_port"`
	AutoCloseSchedule string      `json:"autoclose_schedule" mapstructure:"autoclose_schedule"`
	LogLevel          string      `json:"log_level" mapstructure:"log_level"`
	LogFormat         string      `json:"log_format" mapstructure:"log_format"`
	Rules             model.Rules `json:"rules" mapstructure:"rules"`
}

func Default() Config {
	return Config{
		DBDriver:          DriverSQLite,
		WebPort:           8080,
		AutoCloseSchedule: autoclose.DefaultSchedule,
		LogLevel:          "info",
		LogFormat:         "text",
		Rules:             model.DefaultRules(),
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tasktracker", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the JSON config at path, when present, and applies TASKTRACKER_*
// environment overrides on top. PROJECT_OF_NUMBER_MAX, TASK_OF_NUMBER_MAX and
// DATABASE_URL are honored as well.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_driver", cfg.DBDriver)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("web_port", cfg.WebPort)
	v.SetDefault("autoclose_schedule", cfg.AutoCloseSchedule)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("rules.max_projects", cfg.Rules.MaxProjects)
	v.SetDefault("rules.max_tasks_per_project", cfg.Rules.MaxTasksPerProject)

	bindings := map[string]string{
		"database_url":                "DATABASE_URL",
		"rules.max_projects":          "PROJECT_OF_NUMBER_MAX",
		"rules.max_tasks_per_project": "TASK_OF_NUMBER_MAX",
	}
	for key, legacy := range bindings {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	// A configured status list replaces the defaults instead of overlaying them.
	cfg.Rules.Statuses = nil
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Rules = cfg.Rules.WithDefaults()
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("db_driver %q requires database_url", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown db_driver %q", c.DBDriver)
	}
	if c.Rules.MaxProjects < 0 || c.Rules.MaxTasksPerProject < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

// Save writes cfg as indented JSON. The database URL is left out so credentials
// stay in the environment.
func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	cfg.DatabaseURL = ""
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
