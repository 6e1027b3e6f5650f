package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONEDERO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Contains(t, cfg.Database.Path, "monedero.db")
	require.InDelta(t, 0.7, cfg.Suggestions.MinConfidence, 1e-9)
	require.InDelta(t, 0.5, cfg.Suggestions.ReviewConfidence, 1e-9)
	require.Equal(t, 2, cfg.Suggestions.MaxSuggestedTags)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/tmp/ledger.db"

[suggestions]
min_confidence = 0.85

[log]
level = "debug"
`), 0o644))
	t.Setenv("MONEDERO_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	require.InDelta(t, 0.85, cfg.Suggestions.MinConfidence, 1e-9)
	require.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	require.InDelta(t, 0.5, cfg.Suggestions.ReviewConfidence, 1e-9)
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("MONEDERO_CONFIG", path)

	want := Config{
		Database:    DatabaseConfig{Path: "/var/lib/monedero/m.db"},
		Suggestions: SuggestionsConfig{MinConfidence: 0.6, ReviewConfidence: 0.4, MaxSuggestedTags: 3},
		Log:         LogConfig{Level: "warn"},
	}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
