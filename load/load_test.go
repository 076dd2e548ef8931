package load

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wafer/wasm"
	"github.com/pgavlin/wafer/wasm/diag"
)

// A module with one type, one function returning i32 and a name section.
var sample = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b,
	0x00, 0x0b, 0x04, 'n', 'a', 'm', 'e', 0x00, 0x04, 0x03, 'a', 'b', 'c',
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.wasm")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	m, err := LoadFile(writeFile(t, sample), nil, nil)
	require.NoError(t, err)
	defer m.Free()

	assert.Equal(t, 1, m.FunctionCount())
	b, ok := m.Body(0)
	require.True(t, ok)
	assert.Equal(t, int32(42), b.Code.Instructions()[0].I32())

	names, err := m.Names()
	require.NoError(t, err)
	assert.Equal(t, "abc", names.Module)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.wasm"), nil, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, nil)
	_, err = LoadFile(path, nil, nil)
	assert.ErrorIs(t, err, diag.ErrMalformed)
	assert.Contains(t, err.Error(), path)

	_, err = LoadFile(writeFile(t, sample[:20]), nil, nil)
	assert.ErrorIs(t, err, diag.ErrMalformed)
}

func TestMap(t *testing.T) {
	f, err := Map(writeFile(t, sample))
	require.NoError(t, err)
	assert.Equal(t, sample, f.Bytes())
	require.NoError(t, f.Close())
	assert.Nil(t, f.Bytes())
	require.NoError(t, f.Close())
}

func TestLoadModule(t *testing.T) {
	cfg := wasm.DefaultConfig()
	cfg.StreamScratch = 16
	m, err := LoadModule(bytes.NewReader(sample), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, m.FunctionCount())
	m.Free()
}
