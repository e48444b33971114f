package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/errs"
)

const EnvPrefix = "SYLCAL"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Server     ServerConfig     `mapstructure:"server"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// AutoMigrate applies the schema when the application starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// BusyTimeout is how long sqlite waits on a locked database.
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type ExtractionConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	PromptFile   string        `mapstructure:"prompt_file"`
	FixtureFile  string        `mapstructure:"fixture_file"`
	MinTextRunes int           `mapstructure:"min_text_runes"`
}

type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CalendarConfig struct {
	MaxMarks int `mapstructure:"max_marks"`
}

// Load reads .env, then the YAML config file, then SYLCAL_* environment
// variables, in increasing order of precedence.
func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errs.Wrap(err, "load .env")
	}

	v := viper.New()
	setDefaults(logCtx, v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Extraction.APIKey == "" {
		cfg.Extraction.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return Config{}, errs.Wrap(err, "parse log.level")
	}
	logging.SetLevel(level)

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("extraction_provider", cfg.Extraction.Provider),
		slog.Bool("api_key_set", cfg.Extraction.APIKey != ""),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if cfg.Extraction.Timeout <= 0 {
		return errors.New("extraction.timeout must be positive")
	}
	if cfg.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if cfg.Calendar.MaxMarks < 1 {
		return errors.New("calendar.max_marks must be at least 1")
	}
	return nil
}

func setDefaults(ctx context.Context, v *viper.Viper) {
	if ctx == nil {
		return
	}

	v.SetDefault("app.name", "syllabuscal")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/syllabuscal.sqlite")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("extraction.provider", "openai")
	v.SetDefault("extraction.model", "gpt-4o-mini")
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.base_url", "")
	v.SetDefault("extraction.timeout", 90*time.Second)
	v.SetDefault("extraction.cache_ttl", 7*24*time.Hour)
	v.SetDefault("extraction.prompt_file", "")
	v.SetDefault("extraction.fixture_file", "")
	v.SetDefault("extraction.min_text_runes", 20)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.max_bytes", 32<<20)
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("calendar.max_marks", 3)
}
