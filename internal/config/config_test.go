package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 1.0, cfg.WaitScale)
	assert.Empty(t, cfg.DebugListenAddr)
	assert.Empty(t, cfg.RunDBPath)
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "seed: 42\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 1.0, cfg.WaitScale, "an omitted wait_scale should fall back to real time")
}

func TestLoadHonorsEveryField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "seed: 7\nwait_scale: 0.01\ndebug_listen_addr: 127.0.0.1:9090\nrundb_path: run.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 0.01, cfg.WaitScale)
	assert.Equal(t, "127.0.0.1:9090", cfg.DebugListenAddr)
	assert.Equal(t, "run.db", cfg.RunDBPath)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
