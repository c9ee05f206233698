package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".goattr"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".goattr", "goattr.db"), cfg.DBFile())
	assert.Equal(t, BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, 4096, cfg.Cache.Size)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Scan.IncludeTests)
	assert.False(t, cfg.Scan.IncludeVendor)
	assert.Equal(t, runtime.NumCPU(), cfg.Scan.Workers)
	assert.Empty(t, cfg.Preload)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, "goattr.yaml", `
db_path: /var/cache/goattr
cache:
  backend: Memory
  size: 64
log:
  level: debug
scan:
  include_tests: true
  workers: 3
preload:
  - namespace: example.com/app/models
    rules:
      - descriptor: example.com/app/attrs.Table
        mode: single
        ascend: true
      - descriptor: example.com/app/attrs.Route
        mode: methods
        transform: keys(value)
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/goattr", cfg.DBPath)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Scan.IncludeTests)
	assert.Equal(t, 3, cfg.Scan.Workers)

	require.Len(t, cfg.Preload, 1)
	assert.Equal(t, "example.com/app/models", cfg.Preload[0].Namespace)
	assert.Equal(t, []RuleConfig{
		{Descriptor: "example.com/app/attrs.Table", Mode: "single", Ascend: true},
		{Descriptor: "example.com/app/attrs.Route", Mode: "methods", Transform: "keys(value)"},
	}, cfg.Preload[0].Rules)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "goattr.json", `{"cache": {"backend": "memory"}, "log": {"level": "warn"}}`)
	t.Setenv("GOATTR_CACHE_BACKEND", "none")
	t.Setenv("GOATTR_SCAN_INCLUDE_VENDOR", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Scan.IncludeVendor)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"backend", "cache:\n  backend: redis\n", "cache.backend"},
		{"level", "log:\n  level: loud\n", "log.level"},
		{"workers", "scan:\n  workers: -1\n", "scan.workers"},
		{"memory size", "cache:\n  backend: memory\n  size: 0\n", "cache.size"},
		{"namespace", "preload:\n  - rules: []\n", "namespace is required"},
		{"mode", "preload:\n  - namespace: a\n    rules:\n      - descriptor: a.B\n        mode: sometimes\n", "unknown load mode"},
		{"descriptor", "preload:\n  - namespace: a\n    rules:\n      - mode: single\n", "descriptor is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "goattr.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), got)

	got, err = expandHome("/abs/~/x")
	require.NoError(t, err)
	assert.Equal(t, "/abs/~/x", got)
}

func TestOpenStore(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Cache.Backend = BackendNone
	store, closeStore, err := cfg.OpenStore()
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closeStore())

	cfg.Cache.Backend = BackendMemory
	store, closeStore, err = cfg.OpenStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.NoError(t, closeStore())

	cfg.Cache.Backend = BackendSQLite
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "cache")
	store, closeStore, err = cfg.OpenStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.FileExists(t, cfg.DBFile())
	assert.NoError(t, closeStore())

	cfg.Cache.Backend = "tape"
	_, _, err = cfg.OpenStore()
	assert.Error(t, err)
}
