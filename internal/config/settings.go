package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	AverageAlgorithmDominant = "dominant"
	AverageAlgorithmSimple   = "simple"
	AverageAlgorithmSqrt     = "sqrt"
	AverageAlgorithmKmeans   = "kmeans"
)

// Settings holds the runtime settings loaded from settings.toml.
type Settings struct {
	Server       ServerSettings       `toml:"server"`
	Logging      LoggingSettings      `toml:"logging"`
	Loader       LoaderSettings       `toml:"loader"`
	DynamicColor DynamicColorSettings `toml:"dynamic_color"`
}

type ServerSettings struct {
	BaseURL string `toml:"base_url"`
}

type LoggingSettings struct {
	Level string `toml:"level"` // debug, info, warn, error
}

type LoaderSettings struct {
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"` // 0 disables the timeout
	MaxImageBytes       int `toml:"max_image_bytes"`
}

type DynamicColorSettings struct {
	FastModeThreshold   int    `toml:"fast_mode_threshold"`
	IgnoreTolerance     int    `toml:"ignore_tolerance"`
	AverageAlgorithm    string `toml:"average_algorithm"`
	FillMissingSwatches bool   `toml:"fill_missing_swatches"`
	SuppressDuplicates  bool   `toml:"suppress_duplicates"`
}

func Default() Settings {
	return Settings{
		Server: ServerSettings{
			BaseURL: "http://127.0.0.1:4567",
		},
		Logging: LoggingSettings{
			Level: "info",
		},
		Loader: LoaderSettings{
			FetchTimeoutSeconds: 30,
			MaxImageBytes:       32 << 20,
		},
		DynamicColor: DynamicColorSettings{
			FastModeThreshold:   600,
			IgnoreTolerance:     75,
			AverageAlgorithm:    AverageAlgorithmDominant,
			FillMissingSwatches: true,
		},
	}
}

// Load reads settings from path. A missing file yields the defaults and is
// written back so users have something to edit.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		settings := Default()
		if saveErr := Save(path, settings); saveErr != nil {
			return settings, saveErr
		}
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (Settings, error) {
	settings := Default()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	applyDefaults(&settings)

	if err := Validate(settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func Save(path string, settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}

	return nil
}

func applyDefaults(settings *Settings) {
	defaults := Default()

	settings.Server.BaseURL = strings.TrimRight(strings.TrimSpace(settings.Server.BaseURL), "/")
	settings.Logging.Level = strings.ToLower(strings.TrimSpace(settings.Logging.Level))
	if settings.Logging.Level == "" {
		settings.Logging.Level = defaults.Logging.Level
	}
	if settings.Loader.MaxImageBytes <= 0 {
		settings.Loader.MaxImageBytes = defaults.Loader.MaxImageBytes
	}
	if settings.DynamicColor.FastModeThreshold <= 0 {
		settings.DynamicColor.FastModeThreshold = defaults.DynamicColor.FastModeThreshold
	}
	settings.DynamicColor.AverageAlgorithm = strings.ToLower(strings.TrimSpace(settings.DynamicColor.AverageAlgorithm))
	if settings.DynamicColor.AverageAlgorithm == "" {
		settings.DynamicColor.AverageAlgorithm = defaults.DynamicColor.AverageAlgorithm
	}
}

// Validate reports the first invalid setting.
func Validate(settings Settings) error {
	if settings.Server.BaseURL != "" {
		parsed, err := url.Parse(settings.Server.BaseURL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("server.base_url %q must be an absolute http(s) URL", settings.Server.BaseURL)
		}
	}

	switch settings.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", settings.Logging.Level)
	}

	if settings.Loader.FetchTimeoutSeconds < 0 {
		return errors.New("loader.fetch_timeout_seconds must not be negative")
	}

	if settings.DynamicColor.IgnoreTolerance < 0 || settings.DynamicColor.IgnoreTolerance > 255 {
		return fmt.Errorf("dynamic_color.ignore_tolerance %d is outside 0..255", settings.DynamicColor.IgnoreTolerance)
	}

	switch settings.DynamicColor.AverageAlgorithm {
	case AverageAlgorithmDominant, AverageAlgorithmSimple, AverageAlgorithmSqrt, AverageAlgorithmKmeans:
	default:
		return fmt.Errorf("dynamic_color.average_algorithm %q is not supported", settings.DynamicColor.AverageAlgorithm)
	}

	return nil
}
