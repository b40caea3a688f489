package debugdump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledWriterIsNoop(t *testing.T) {
	w := Disabled()
	require.False(t, w.Enabled())
	require.NoError(t, w.Write("phase", "bin", []byte{1, 2, 3}))
	require.NoError(t, w.WriteJSON("phase", map[string]int{"a": 1}))
}

func TestNewWithEmptyDirIsDisabled(t *testing.T) {
	w, err := New("")
	require.NoError(t, err)
	require.False(t, w.Enabled())
}

func TestNewCreatesDirectoryAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "debug")
	w, err := New(dir)
	require.NoError(t, err)
	require.True(t, w.Enabled())

	require.NoError(t, w.Write("bytecode", "bin", []byte{0x60, 0x01}))
	data, err := os.ReadFile(filepath.Join(dir, "bytecode.bin"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x01}, data)
}

func TestWriteJSONProducesValidJSON(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteJSON("analyze", struct {
		Blocks int `json:"blocks"`
	}{Blocks: 3}))

	data, err := os.ReadFile(filepath.Join(dir, "analyze.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"blocks": 3`)
}
