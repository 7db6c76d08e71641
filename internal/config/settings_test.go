package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.toml")

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)

	_, err = os.Stat(path)
	require.NoError(t, err, "expected defaults to be written back")

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings, reloaded)
}

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	t.Parallel()

	settings, err := Parse([]byte(`
[server]
base_url = "https://manga.example.com/"

[dynamic_color]
average_algorithm = "KMeans"
`))
	require.NoError(t, err)

	assert.Equal(t, "https://manga.example.com", settings.Server.BaseURL)
	assert.Equal(t, AverageAlgorithmKmeans, settings.DynamicColor.AverageAlgorithm)
	assert.Equal(t, 600, settings.DynamicColor.FastModeThreshold)
	assert.Equal(t, 75, settings.DynamicColor.IgnoreTolerance)
	assert.True(t, settings.DynamicColor.FillMissingSwatches)
	assert.False(t, settings.DynamicColor.SuppressDuplicates)
	assert.Equal(t, 30, settings.Loader.FetchTimeoutSeconds)
}

func TestParseKeepsZeroIgnoreTolerance(t *testing.T) {
	t.Parallel()

	settings, err := Parse([]byte(`
[dynamic_color]
ignore_tolerance = 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0, settings.DynamicColor.IgnoreTolerance)

	_, err = Parse([]byte(`
[dynamic_color]
ignore_tolerance = -5
`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{name: "empty base url", mutate: func(s *Settings) { s.Server.BaseURL = "" }},
		{name: "relative base url", mutate: func(s *Settings) { s.Server.BaseURL = "/api" }, wantErr: true},
		{name: "ftp base url", mutate: func(s *Settings) { s.Server.BaseURL = "ftp://host" }, wantErr: true},
		{name: "unknown level", mutate: func(s *Settings) { s.Logging.Level = "trace" }, wantErr: true},
		{name: "negative timeout", mutate: func(s *Settings) { s.Loader.FetchTimeoutSeconds = -1 }, wantErr: true},
		{name: "tolerance too large", mutate: func(s *Settings) { s.DynamicColor.IgnoreTolerance = 300 }, wantErr: true},
		{name: "negative tolerance", mutate: func(s *Settings) { s.DynamicColor.IgnoreTolerance = -1 }, wantErr: true},
		{name: "zero tolerance", mutate: func(s *Settings) { s.DynamicColor.IgnoreTolerance = 0 }},
		{name: "unknown algorithm", mutate: func(s *Settings) { s.DynamicColor.AverageAlgorithm = "median" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Default()
			tt.mutate(&settings)

			err := Validate(settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolvePathsCreatesDirectories(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "covertint")
	paths, err := resolvePathsIn(base)
	require.NoError(t, err)

	for _, dir := range []string{paths.BaseDir, paths.ThumbnailDir, paths.LogDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(base, "settings.toml"), paths.SettingsPath)
	assert.Equal(t, filepath.Join(base, "preferences.db"), paths.DBPath)
}
