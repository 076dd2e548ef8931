package dump

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pgavlin/wafer/cmd/wafer/options"
	"github.com/pgavlin/wafer/load"
	"github.com/pgavlin/wafer/wasm"
	"github.com/pgavlin/wafer/wasm/types"
)

type names struct {
	moduleName    string
	functionNames map[uint32]string
}

func moduleNames(mod *wasm.Module) *names {
	n := names{functionNames: map[uint32]string{}}
	if mod.Import != nil {
		funcIdx := uint32(0)
		for _, import_ := range mod.Import.Entries {
			if _, ok := import_.Type.(wasm.FuncImport); ok {
				n.functionNames[funcIdx] = import_.ModuleName.String() + "." + import_.FieldName.String()
				funcIdx++
			}
		}
	}
	if mod.Export != nil {
		for _, e := range mod.Export.Entries {
			if e.Kind == types.ExternalFunction {
				n.functionNames[e.Index] = e.Field.String()
			}
		}
	}
	if names, err := mod.Names(); err == nil {
		n.moduleName = names.Module
		for _, name := range names.Functions {
			n.functionNames[name.Index] = name.Name
		}
	}
	return &n
}

func Command(opts *options.Options) *cobra.Command {
	var stats bool

	command := &cobra.Command{
		Use:   "dump [path to module]",
		Short: "Dump WebAssembly modules",
		Long:  "Dump the sections and decoded function bodies of a WebAssembly module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Config()
			if err != nil {
				return err
			}
			mod, err := load.LoadFile(args[0], nil, cfg)
			if err != nil {
				return err
			}
			defer mod.Free()

			n := moduleNames(mod)

			w := bufio.NewWriter(cmd.OutOrStdout())
			defer w.Flush()

			if stats {
				return dumpStats(w, mod, n)
			}
			return dumpModule(w, mod, n)
		},
	}

	command.PersistentFlags().BoolVarP(&stats, "stats", "s", false, "dump per-function statistics in CSV format")

	return command
}

func dumpModule(w io.Writer, m *wasm.Module, n *names) error {
	if n.moduleName != "" {
		fmt.Fprintf(w, "module %s\n", n.moduleName)
	}

	for _, s := range m.Sections {
		raw := s.GetRawSection()
		if c, ok := s.(*wasm.SectionCustom); ok {
			fmt.Fprintf(w, "section %v %q [%#x, %#x)\n", raw.ID, c.Name.String(), raw.Start, raw.End)
		} else {
			fmt.Fprintf(w, "section %v [%#x, %#x)\n", raw.ID, raw.Start, raw.End)
		}
	}

	if m.Import != nil {
		for _, e := range m.Import.Entries {
			fmt.Fprintf(w, "import %v %s.%s\n", e.Type.Kind(), e.ModuleName, e.FieldName)
		}
	}
	if m.Export != nil {
		for _, e := range m.Export.Entries {
			fmt.Fprintf(w, "export %v %d %q\n", e.Kind, e.Index, e.Field.String())
		}
	}
	if m.Start != nil {
		fmt.Fprintf(w, "start %d\n", m.Start.Index)
	}

	if m.Code == nil {
		return nil
	}
	for i := range m.Code.Bodies {
		funcidx := uint32(m.ImportedFunctionCount() + i)
		body := &m.Code.Bodies[i]
		sig, _ := m.FunctionSignature(funcidx)

		fmt.Fprintf(w, "\nfunc %d", funcidx)
		if name, ok := n.functionNames[funcidx]; ok {
			fmt.Fprintf(w, " %s", name)
		}
		fmt.Fprintf(w, " %v\n", sig)
		for _, l := range body.Locals {
			fmt.Fprintf(w, "  local %d %v\n", l.Count, l.Type)
		}
		if _, err := io.WriteString(w, body.Code.String()); err != nil {
			return err
		}
	}
	return nil
}
