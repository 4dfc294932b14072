package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config lookup at an empty temp dir and clears every
// override.
func isolate(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, env := range []string{EnvDataset, EnvListen, EnvLogLevel, EnvFetchRate} {
		t.Setenv(env, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, GlobalConfigDir, GlobalConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/cg/config.yml", GlobalConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	assert.Equal(t, filepath.Join(home, ".config", "cg", "config.yml"), GlobalConfigPath())
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	isolate(t)

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{}, cfg)
}

func TestLoadGlobalConfig_Parses(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
dataset: /data/papers.json
listen: ":9000"
log_level: debug
watch: true
search_cache_size: 64
fetch_rate: 0.5
`)

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{
		Dataset:         "/data/papers.json",
		Listen:          ":9000",
		LogLevel:        "debug",
		Watch:           true,
		SearchCacheSize: 64,
		FetchRate:       0.5,
	}, cfg)
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "dataset: [unclosed")

	_, err := LoadGlobalConfig()
	assert.ErrorContains(t, err, "parsing global config")
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	isolate(t)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{Dataset: "/x.json", Watch: true}))
	ResetGlobalConfigCache()

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "/x.json", cfg.Dataset)
	assert.True(t, cfg.Watch)
}

func TestResolve_Defaults(t *testing.T) {
	isolate(t)

	s, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, s.Listen)
	assert.Equal(t, DefaultLogLevel, s.LogLevel)
	assert.Equal(t, DefaultSearchCacheSize, s.SearchCacheSize)
	assert.Equal(t, 1.0, s.FetchRate)

	_, err = s.RequireDataset()
	assert.ErrorIs(t, err, ErrDatasetNotConfigured)
}

func TestResolve_Precedence(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "dataset: /from/file.json\nlisten: ':7000'\nfetch_rate: 3\n")

	s, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "/from/file.json", s.Dataset)
	assert.Equal(t, ":7000", s.Listen)
	assert.Equal(t, 3.0, s.FetchRate)

	t.Setenv(EnvDataset, "https://example.org/papers.json")
	t.Setenv(EnvListen, ":7001")
	t.Setenv(EnvFetchRate, "0.25")
	s, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/papers.json", s.Dataset)
	assert.Equal(t, ":7001", s.Listen)
	assert.Equal(t, 0.25, s.FetchRate)

	s, err = Resolve("/from/flag.json")
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.json", s.Dataset)
}

func TestResolve_ExpandsTilde(t *testing.T) {
	isolate(t)
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	s, err := Resolve("~/papers.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "papers.json"), s.Dataset)
}

func TestResolve_Invalid(t *testing.T) {
	isolate(t)

	t.Setenv(EnvLogLevel, "loud")
	_, err := Resolve("")
	assert.Error(t, err)

	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvFetchRate, "fast")
	_, err = Resolve("")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDataset(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "papers.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0644))

	assert.NoError(t, ValidateDataset(file))
	assert.NoError(t, ValidateDataset("https://example.org/papers.json"))
	assert.NoError(t, ValidateDataset(""))
	assert.ErrorContains(t, ValidateDataset(filepath.Join(dir, "missing.json")), "does not exist")
	assert.ErrorContains(t, ValidateDataset(dir), "directory")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	assert.Equal(t, filepath.Join(home, "data"), ExpandPath("~/data"))
	assert.Equal(t, "/abs/data", ExpandPath("/abs/data"))
	assert.Equal(t, "", ExpandPath(""))
}
