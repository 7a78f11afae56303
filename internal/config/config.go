package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DataPath is the CSV file the dashboard serves. Relative paths are
	// resolved against the working directory at startup.
	DataPath string
	// WatchData drops the cached dataset whenever DataPath changes on disk.
	WatchData bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

var defaults = map[string]string{
	"app_env":          "dev",
	"log_level":        "info",
	"http_addr":        ":8080",
	"data_path":        "data/air_quality.csv",
	"watch_data":       "true",
	"read_timeout":     "5s",
	"write_timeout":    "15s",
	"shutdown_timeout": "10s",
}

// Load reads configuration with precedence env > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	get := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	appEnv := get("app_env")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := ParseLogLevel(get("log_level"))
	if err != nil {
		return Config{}, err
	}

	httpAddr := get("http_addr")
	if httpAddr == "" {
		httpAddr = defaults["http_addr"]
	}

	dataPath := get("data_path")
	if dataPath == "" {
		return Config{}, errors.New("DATA_PATH must not be empty")
	}
	dataPath, err = filepath.Abs(dataPath)
	if err != nil {
		return Config{}, fmt.Errorf("DATA_PATH %q: %w", dataPath, err)
	}

	watch, err := strconv.ParseBool(get("watch_data"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid WATCH_DATA %q: %w", get("watch_data"), err)
	}

	durations := map[string]*time.Duration{}
	cfg := Config{
		AppEnv:    appEnv,
		LogLevel:  level,
		HTTPAddr:  httpAddr,
		DataPath:  dataPath,
		WatchData: watch,
	}
	durations["read_timeout"] = &cfg.ReadTimeout
	durations["write_timeout"] = &cfg.WriteTimeout
	durations["shutdown_timeout"] = &cfg.ShutdownTimeout
	for key, dst := range durations {
		d, err := time.ParseDuration(get(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", strings.ToUpper(key), get(key), err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0", strings.ToUpper(key))
		}
		*dst = d
	}

	return cfg, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
