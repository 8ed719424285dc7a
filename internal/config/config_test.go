// Package config_test tests configuration loading, merging hierarchy, and environment variable overrides.
// Related: internal/config/config.go
// Tags: config, loading, merging, env-vars, json, precedence
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so a real global config is never read.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	return tmpDir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.ContentDir)
	assert.Equal(t, []string{"**/*.json"}, cfg.Include)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 50, cfg.MaxErrors)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 500, cfg.MaxHistory)
	assert.False(t, cfg.Strict)
	assert.Equal(t, filepath.Join(home, ".packforge", "state"), cfg.StateDir)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".packforge"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".packforge", "config.json"),
		[]byte(`{"max_errors": 10, "workers": 2, "format": "yaml"}`), 0644))
	local := writeConfig(t, t.TempDir(), `{"workers": 4, "strict": true, "exclude": ["**/_*.json"]}`)
	t.Setenv("PACKFORGE_FORMAT", "json")

	cfg, err := Load(local)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxErrors, "global overrides defaults")
	assert.Equal(t, 4, cfg.Workers, "local overrides global")
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"**/_*.json"}, cfg.Exclude)
	assert.Equal(t, "json", cfg.Format, "environment overrides files")
}

func TestLoad_EnvOverride(t *testing.T) {
	home := isolate(t)
	t.Setenv("PACKFORGE_MAX_ERRORS", "7")
	t.Setenv("PACKFORGE_STRICT", "true")

	cfg, err := Load(filepath.Join(home, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxErrors)
	assert.True(t, cfg.Strict)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		content string
		field   string
	}{
		"workers out of range": {content: `{"workers": 1000}`},
		"negative max errors":  {content: `{"max_errors": -1}`},
		"unknown format":       {content: `{"format": "xml"}`, field: "format"},
		"bad include pattern":  {content: `{"include": ["[abc"]}`, field: "include"},
		"missing tables":       {content: `{"tables_path": "/nonexistent/tables.yaml"}`, field: "tables_path"},
		"malformed json":       {content: `{"workers": `},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			home := isolate(t)
			path := writeConfig(t, home, tc.content)

			_, err := Load(path)
			require.Error(t, err)
			if tc.field != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.field, verr.Field)
			}
		})
	}
}

func TestLoad_TablesPath(t *testing.T) {
	home := isolate(t)
	tables := filepath.Join(home, "tables.yaml")
	require.NoError(t, os.WriteFile(tables, []byte("characteristics: {}\n"), 0644))
	path := writeConfig(t, home, `{"tables_path": "`+tables+`"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tables, cfg.TablesPath)
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"PACKFORGE_MAX_ERRORS":   "max_errors",
		"PACKFORGE_CONTENT_DIR":  "content_dir",
		"PACKFORGE_METRICS_FILE": "metrics_file",
	}
	for in, want := range tests {
		in, want := in, want
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, envTransform(in))
		})
	}
}
