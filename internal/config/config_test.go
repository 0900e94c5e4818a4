package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Grouping = "week"
	cfg.OthersLabel = "Ostatní"
	cfg.SplitDelimiter = "##"

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "week", got.Grouping)
	assert.Equal(t, "Ostatní", got.OthersLabel)
	assert.Equal(t, "##", got.SplitDelimiter)
	assert.Equal(t, cfg.FiltersFile, got.FiltersFile)
	assert.Equal(t, cfg.DatasetsFile, got.DatasetsFile)
	assert.Equal(t, cfg.LogLevel, got.LogLevel)
	assert.Equal(t, dir, got.Dir)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "month", cfg.Grouping)
	assert.Equal(t, "Others", cfg.OthersLabel)
	assert.Equal(t, "||", cfg.SplitDelimiter)
	assert.Equal(t, "filters.json", cfg.FiltersFile)
	assert.Equal(t, "datasets.json", cfg.DatasetsFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("grouping: year\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "year", cfg.Grouping)
	assert.Equal(t, "Others", cfg.OthersLabel)
	assert.Equal(t, "||", cfg.SplitDelimiter)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))
	t.Setenv("FINSTAT_GROUPING", "all")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "all", cfg.Grouping)
}

func TestFromEnv_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := FromEnv(dir)
	require.NoError(t, err)

	want := Default()
	want.Dir = dir
	assert.Equal(t, want, cfg)
}

func TestFromEnv_Override(t *testing.T) {
	t.Setenv("FINSTAT_GROUPING", "week")
	t.Setenv("FINSTAT_OTHERS_LABEL", "Rest")

	cfg, err := FromEnv(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "week", cfg.Grouping)
	assert.Equal(t, "Rest", cfg.OthersLabel)
	assert.Equal(t, "filters.json", cfg.FiltersFile)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("grouping: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Grouping = "quarter"
	cfg.OthersLabel = " "
	cfg.SplitDelimiter = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown grouping")
	assert.Contains(t, err.Error(), "others_label")
	assert.Contains(t, err.Error(), "split_delimiter")
}

func TestResolve(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "filters.json", cfg.Resolve("filters.json"))

	cfg.Dir = "/data/finstat"
	assert.Equal(t, "/data/finstat/filters.json", cfg.Resolve("filters.json"))
	assert.Equal(t, "/etc/filters.json", cfg.Resolve("/etc/filters.json"))
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "grouping: month")
	assert.Contains(t, contents, "others_label: Others")
	assert.Contains(t, contents, "split_delimiter:")
	assert.NotContains(t, contents, "dir:")
}
