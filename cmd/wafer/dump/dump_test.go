package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wafer/cmd/wafer/options"
)

// One function "answer" (() -> i32) returning 42 from inside a loop, and a
// name section naming the module "m".
var sample = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x0a, 0x01, 0x06, 'a', 'n', 's', 'w', 'e', 'r', 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x03, 0x7f, 0x41, 0x2a, 0x0b, 0x0b,
	0x00, 0x09, 0x04, 'n', 'a', 'm', 'e', 0x00, 0x02, 0x01, 'm',
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.wasm")
	require.NoError(t, os.WriteFile(path, sample, 0o600))

	var opts options.Options
	root := &cobra.Command{Use: "wafer"}
	opts.Register(root)
	root.AddCommand(Command(&opts))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append(append([]string{"dump"}, args...), path))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestDump(t *testing.T) {
	out := run(t)
	assert.Contains(t, out, "module m\n")
	assert.Contains(t, out, "section code")
	assert.Contains(t, out, `export function 0 "answer"`)
	assert.Contains(t, out, "func 0 answer () -> (i32)")
	assert.Contains(t, out, "loop")
	assert.Contains(t, out, "i32.const 42")
}

func TestDumpStats(t *testing.T) {
	out := run(t, "--stats")

	var rows []row
	require.NoError(t, csvutil.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "answer", r.Function)
	assert.Equal(t, 0, r.Funcidx)
	assert.Equal(t, 1, r.Out)
	assert.Equal(t, 4, r.InstructionCount)
	assert.Equal(t, 3, r.DistinctOpcodes)
	assert.Equal(t, 1, r.Loop)
	assert.Equal(t, 1, r.Const)
	assert.Equal(t, 1, r.SmallConst)
	assert.True(t, r.HasLoops)
}
