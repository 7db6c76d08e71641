package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	BaseDir      string
	DBPath       string
	ThumbnailDir string
	SettingsPath string
	LogDir       string
}

func ResolvePaths(appSlug string) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}

	return resolvePathsIn(filepath.Join(configDir, appSlug))
}

func resolvePathsIn(baseDir string) (Paths, error) {
	thumbnailDir := filepath.Join(baseDir, "thumbnails")
	logDir := filepath.Join(baseDir, "state")

	for _, dir := range []string{baseDir, thumbnailDir, logDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("create app dir %s: %w", dir, err)
		}
	}

	return Paths{
		BaseDir:      baseDir,
		DBPath:       filepath.Join(baseDir, "preferences.db"),
		ThumbnailDir: thumbnailDir,
		SettingsPath: filepath.Join(baseDir, "settings.toml"),
		LogDir:       logDir,
	}, nil
}
