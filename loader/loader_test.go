package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zorby-dev/poc/config"
	"github.com/Zorby-dev/poc/vm"
)

func TestLoadImageExactSizeSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 252), 0644))

	data, err := LoadImage(path, 252)
	require.NoError(t, err)
	assert.Len(t, data, 252)
}

func TestLoadImageWrongSizeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0644))

	_, err := LoadImage(path, 252)
	assert.Error(t, err)
}

func TestLoadImageMissingFileErrors(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.bin"), 252)
	assert.Error(t, err)
}

func TestBuildWiresCanonicalPortMap(t *testing.T) {
	cfg := config.DefaultConfig()
	image := make([]byte, cfg.Machine.RAMSize)
	image[0] = 0x03 // hlt, so the VM halts on its first step

	machine := Build(image, cfg)
	require.NotNil(t, machine.VM)

	machine.Keyboard.Set(0x41)
	assert.Equal(t, byte(0x41), machine.VM.Bus.Read(byte(cfg.Machine.KeyboardBegin)))

	require.NoError(t, machine.VM.Step())
	assert.Equal(t, vm.StateHalted, machine.VM.State)
}

func TestBuildOmitsTerminalPortWhenDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	image := make([]byte, cfg.Machine.RAMSize)
	machine := Build(image, cfg)

	assert.Len(t, machine.VM.Bus.Ports, 4)
}

func TestBuildAddsTerminalPortWhenEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Machine.RAMSize = 200
	cfg.Machine.TerminalBegin = 200
	cfg.Machine.TerminalEnd = 252
	image := make([]byte, cfg.Machine.RAMSize)

	machine := Build(image, cfg)
	assert.Len(t, machine.VM.Bus.Ports, 5)

	machine.VM.Bus.Write(200, 0) // select scrollback cursor 0
	machine.VM.Bus.Write(201, 'x')
	assert.Equal(t, byte('x'), machine.Terminal.Peek(1))
}
