package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigMatchesCanonicalPortMap(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 252, cfg.Machine.RAMSize)
	assert.Equal(t, 252, cfg.Machine.KeyboardBegin)
	assert.Equal(t, 253, cfg.Machine.KeyboardEnd)
	assert.Equal(t, 253, cfg.Machine.FloppyBegin)
	assert.Equal(t, 255, cfg.Machine.FloppyEnd)
	assert.Equal(t, 255, cfg.Machine.SerialBegin)
	assert.Equal(t, 256, cfg.Machine.SerialEnd)
	assert.Equal(t, 0, cfg.Machine.TerminalBegin)
	assert.Equal(t, 0, cfg.Machine.TerminalEnd)
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveToThenLoadFromRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Assemble.ImageSize = 128
	cfg.Machine.TerminalBegin = 200
	cfg.Machine.TerminalEnd = 252
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 128, loaded.Assemble.ImageSize)
	assert.Equal(t, 200, loaded.Machine.TerminalBegin)
	assert.Equal(t, 252, loaded.Machine.TerminalEnd)
}

func TestLoadFromMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}
