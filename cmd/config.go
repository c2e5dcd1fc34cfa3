package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envDevelopment = "development"
	envTest        = "test"
	envProduction  = "production"
)

// DefaultEnvFiles are merged in order; later files win, real environment
// variables win over both.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config holds CLI configuration.
type Config struct {
	Env                string
	DatabaseURL        string
	Port               int
	ListLimit          int
	LogLevel           string
	LogFile            string
	CORSAllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", envDevelopment)
	v.SetDefault("database_url", "dev-restaurants.db")
	v.SetDefault("test_database_url", "test-restaurants.db")
	v.SetDefault("port", 8080)
	v.SetDefault("list_limit", 50)
	v.SetDefault("log_level", "")
	v.SetDefault("log_file", "")
	v.SetDefault("cors_allowed_origins", "*")
}

// LoadConfig resolves configuration from defaults, env files, environment
// variables and any flags already bound to v, in increasing priority.
// Missing env files are skipped.
func LoadConfig(v *viper.Viper, envFiles ...string) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to stat %s", path)
		}
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
	}

	cfg := &Config{
		Env:         strings.ToLower(strings.TrimSpace(v.GetString("app_env"))),
		DatabaseURL: v.GetString("database_url"),
		Port:        v.GetInt("port"),
		ListLimit:   v.GetInt("list_limit"),
		LogLevel:    v.GetString("log_level"),
		LogFile:     v.GetString("log_file"),
	}

	switch cfg.Env {
	case envDevelopment, envProduction:
	case envTest:
		cfg.DatabaseURL = v.GetString("test_database_url")
	default:
		return nil, errors.Errorf("APP_ENV must be one of %s, %s or %s, got %q",
			envDevelopment, envTest, envProduction, cfg.Env)
	}

	if override := v.GetString("db"); override != "" {
		cfg.DatabaseURL = override
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("no database configured")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.ListLimit <= 0 {
		return nil, errors.Errorf("LIST_LIMIT must be positive, got %d", cfg.ListLimit)
	}

	for _, origin := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
