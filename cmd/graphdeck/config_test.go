package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("graphdeck", pflag.ContinueOnError)
	for _, name := range []string{"config", "endpoint", "base-dir", "locale", "journal", "redis", "metrics-addr", "log-level", "log-file"} {
		fs.String(name, "", "")
	}
	require.NoError(t, fs.Parse(args))
	return fs
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GRAPHDECK_CONFIG", "GRAPHDECK_ENDPOINT", "GRAPHDECK_BASE_DIR", "GRAPHDECK_LOCALE",
		"GRAPHDECK_JOURNAL", "GRAPHDECK_REDIS_ADDR", "GRAPHDECK_METRICS_ADDR", "GRAPHDECK_LOG_LEVEL", "GRAPHDECK_LOG_FILE"} {
		t.Setenv(key, "")
	}
	t.Setenv("LANG", "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphdeck.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(testFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:49483", cfg.Endpoint)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "graphdeck.log", filepath.Base(cfg.LogFile))
	assert.True(t, filepath.IsAbs(cfg.LogFile))
	assert.Empty(t, cfg.JournalPath)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_Layering(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
endpoint = "http://designer:49483"
base_dir = "app"
locale   = "zh-CN"
journal  = "journal.db"

log {
  level = "debug"
}

redis {
  addr = "127.0.0.1:6379"
}
`)
	dir := filepath.Dir(path)

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig(testFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "http://designer:49483", cfg.Endpoint)
		assert.Equal(t, filepath.Join(dir, "app"), cfg.BaseDir)
		assert.Equal(t, filepath.Join(dir, "journal.db"), cfg.JournalPath)
		assert.Equal(t, "zh-CN", cfg.Locale)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
		assert.Empty(t, cfg.MetricsAddr)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("GRAPHDECK_LOCALE", "en")
		t.Setenv("GRAPHDECK_METRICS_ADDR", ":9100")
		cfg, err := LoadConfig(testFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "en", cfg.Locale)
		assert.Equal(t, ":9100", cfg.MetricsAddr)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("GRAPHDECK_ENDPOINT", "http://env:1")
		cfg, err := LoadConfig(testFlags(t, "--config", path, "--endpoint", "https://flag:2", "--base-dir", "/abs"))
		require.NoError(t, err)
		assert.Equal(t, "https://flag:2", cfg.Endpoint)
		assert.Equal(t, "/abs", cfg.BaseDir)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		env         map[string]string
		errorSubstr string
	}{
		{
			name:        "missing explicit config file",
			args:        []string{"--config", "/does/not/exist.hcl"},
			errorSubstr: "config file",
		},
		{
			name:        "endpoint without scheme",
			args:        []string{"--endpoint", "127.0.0.1:49483"},
			errorSubstr: "invalid endpoint",
		},
		{
			name:        "unknown log level from env",
			env:         map[string]string{"GRAPHDECK_LOG_LEVEL": "trace"},
			errorSubstr: "unsupported log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(testFlags(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorSubstr)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `endpoint = `)

	_, err := LoadConfig(testFlags(t, "--config", path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")
}

func TestLoadConfig_UnknownAttribute(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `colour = "blue"`)

	_, err := LoadConfig(testFlags(t, "--config", path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL file")
}

func TestLoadConfig_ConfigFileSelection(t *testing.T) {
	envFile := writeConfig(t, `endpoint = "http://env-file:1"`)
	flagFile := writeConfig(t, `endpoint = "http://flag-file:2"`)

	tests := []struct {
		name     string
		args     []string
		envPath  string
		endpoint string
	}{
		{"flag beats env", []string{"--config", flagFile}, envFile, "http://flag-file:2"},
		{"env alone", nil, envFile, "http://env-file:1"},
		{"flag alone", []string{"--config", flagFile}, "", "http://flag-file:2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv("GRAPHDECK_CONFIG", tt.envPath)

			cfg, err := LoadConfig(testFlags(t, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, cfg.Endpoint)
		})
	}
}

func TestLoadConfig_FlagIgnoresMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRAPHDECK_CONFIG", "/does/not/exist.hcl")
	flagFile := writeConfig(t, `endpoint = "http://flag-file:2"`)

	cfg, err := LoadConfig(testFlags(t, "--config", flagFile))
	require.NoError(t, err)
	assert.Equal(t, "http://flag-file:2", cfg.Endpoint)
}
