package spectest

import (
	"fmt"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/pgavlin/wafer/load"
	"github.com/pgavlin/wafer/wasm"
	"github.com/pgavlin/wafer/wasm/diag"
)

// Failure is a command whose outcome did not match its expectation.
type Failure struct {
	Command Command
	Message string
}

func (f Failure) String() string {
	return fmt.Sprintf("%v: %s", &f.Command, f.Message)
}

// Result tallies a manifest run.
type Result struct {
	Passed   int
	Skipped  int
	Failures []Failure
}

// Runner checks module commands against the decoder.
type Runner struct {
	// Config is passed to every decode. Nil selects wasm.DefaultConfig.
	Config *wasm.Config
	// Strict requires assertion failures to have the expected class.
	// Otherwise any decode error satisfies an assertion.
	Strict bool
	Logger *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run runs the manifest at path. Module files are resolved relative to the
// manifest.
func (r *Runner) Run(path string) (*Result, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	var res Result
	for _, c := range m.Commands {
		msg, ran := r.runCommand(dir, &c)
		switch {
		case !ran:
			res.Skipped++
		case msg != "":
			res.Failures = append(res.Failures, Failure{Command: c, Message: msg})
		default:
			res.Passed++
		}
	}

	r.logger().Info("manifest done",
		zap.String("source", m.SourceFile),
		zap.Int("passed", res.Passed),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(res.Failures)))
	return &res, nil
}

// runCommand reports a failure message, or false if the command does not
// concern the decoder.
func (r *Runner) runCommand(dir string, c *Command) (string, bool) {
	switch c.Type {
	case "module", "assert_unlinkable", "assert_uninstantiable":
		if c.ModuleType == "text" {
			return "", false
		}
		m, err := r.decode(dir, c)
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err), true
		}
		m.Free()
		return "", true
	case "assert_malformed":
		return r.expectFailure(dir, c, diag.Malformed)
	case "assert_invalid":
		return r.expectFailure(dir, c, diag.Invalid)
	default:
		return "", false
	}
}

func (r *Runner) expectFailure(dir string, c *Command, class diag.Class) (string, bool) {
	if c.ModuleType == "text" {
		return "", false
	}

	m, err := r.decode(dir, c)
	if err == nil {
		m.Free()
		return fmt.Sprintf("%s: module was not %v", c.Type, class), true
	}
	got := diag.ClassOf(err)
	if got == 0 {
		return fmt.Sprintf("%s: %v", c.Type, err), true
	}
	if r.Strict && got != class {
		return fmt.Sprintf("%s: expected %v (%s), got %v", c.Type, class, c.Text, err), true
	}
	r.logger().Debug("expected failure",
		zap.Int("line", c.Line),
		zap.String("expected", c.Text),
		zap.Error(err))
	return "", true
}

func (r *Runner) decode(dir string, c *Command) (*wasm.Module, error) {
	return load.LoadFile(filepath.Join(dir, c.Filename), nil, r.Config)
}

// RunManifest runs the manifest at path as part of a test, reporting each
// failure unless its message is listed in ignore.
func RunManifest(t *testing.T, path string, strict bool, ignore []string) {
	t.Helper()

	ignored := map[string]bool{}
	for _, msg := range ignore {
		ignored[msg] = true
	}

	r := Runner{Strict: strict}
	res, err := r.Run(path)
	if err != nil {
		t.Fatalf("running manifest: %v", err)
	}
	for _, f := range res.Failures {
		if msg := f.String(); ignored[msg] {
			t.Logf("ignored: %s", msg)
		} else {
			t.Error(msg)
		}
	}
}
