package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ".txtmerge/logs", cfg.LogDir)
	assert.Equal(t, []string{".txt"}, cfg.Extensions)
	assert.Equal(t, 10*time.Millisecond, cfg.Pace)
	assert.Equal(t, "processing-results", cfg.OutputDir)
	assert.Equal(t, "merged-data", cfg.OutputPrefix)
	assert.True(t, cfg.OpenAfterExport)
	assert.True(t, cfg.History.Enabled)
	assert.Empty(t, cfg.Headers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `log_level: debug
log_dir: /tmp/txtmerge-logs
extensions: [".txt", ".md"]
exclude_dirs: ["node_modules"]
skip_hidden: true
pace: 250ms
output_dir: out
output_prefix: summary
headers: ["Nombre", "Ruta", "Extracto", "Caracteres"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/txtmerge-logs", cfg.LogDir)
	assert.Equal(t, []string{".txt", ".md"}, cfg.Extensions)
	assert.Equal(t, []string{"node_modules"}, cfg.ExcludeDirs)
	assert.True(t, cfg.SkipHidden)
	assert.Equal(t, 250*time.Millisecond, cfg.Pace)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "summary", cfg.OutputPrefix)
	assert.Len(t, cfg.Headers, 4)
	assert.True(t, cfg.OpenAfterExport, "unset keys keep defaults")
	assert.True(t, cfg.History.Enabled)
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	path := writeConfig(t, `open_after_export: false
history:
  enabled: false
  db_path: /tmp/h.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.OpenAfterExport)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/h.db", cfg.History.DBPath)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "log_level: [unclosed"},
		{name: "bad pace", content: "pace: soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".txtmerge"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".txtmerge", "config.yaml"), []byte("log_level: warn\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg, err = LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	level := "error"
	pace := time.Duration(0)
	outDir := "exports"
	open := false
	cfg.MergeWithFlags(&level, &pace, &outDir, &open)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Zero(t, cfg.Pace)
	assert.Equal(t, "exports", cfg.OutputDir)
	assert.False(t, cfg.OpenAfterExport)

	cfg = DefaultConfig()
	cfg.MergeWithFlags(nil, nil, nil, nil)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "uppercase level", modify: func(c *Config) { c.LogLevel = "DEBUG" }},
		{name: "bad level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "negative pace", modify: func(c *Config) { c.Pace = -time.Second }, wantErr: "pace"},
		{name: "no extensions", modify: func(c *Config) { c.Extensions = nil }, wantErr: "extensions"},
		{name: "blank extension", modify: func(c *Config) { c.Extensions = []string{"."} }, wantErr: "extension"},
		{name: "empty output dir", modify: func(c *Config) { c.OutputDir = " " }, wantErr: "output_dir"},
		{name: "empty prefix", modify: func(c *Config) { c.OutputPrefix = "" }, wantErr: "output_prefix"},
		{name: "prefix with separator", modify: func(c *Config) { c.OutputPrefix = "a/b" }, wantErr: "output_prefix"},
		{name: "three headers", modify: func(c *Config) { c.Headers = []string{"a", "b", "c"} }, wantErr: "headers"},
		{name: "four headers", modify: func(c *Config) { c.Headers = []string{"a", "b", "c", "d"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHome(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(t.TempDir(), "custom")
		t.Setenv(HomeEnv, want)

		home, err := Home()
		require.NoError(t, err)
		assert.Equal(t, want, home)
		assert.DirExists(t, want)
	})

	t.Run("working directory fallback", func(t *testing.T) {
		t.Setenv(HomeEnv, "")
		dir := t.TempDir()
		orig, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(orig) })

		home, err := Home()
		require.NoError(t, err)
		assert.Equal(t, HomeDirName, filepath.Base(home))
		assert.DirExists(t, home)
	})
}

func TestHistoryDBPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	path, err := HistoryDBPath(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "history.db"), path)

	cfg := DefaultConfig()
	cfg.History.DBPath = "/var/tmp/runs.db"
	path, err = HistoryDBPath(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/runs.db", path)

	lock, err := RunLockPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "run.lock"), lock)
}
