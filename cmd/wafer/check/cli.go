package check

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pgavlin/wafer/cmd/wafer/options"
	"github.com/pgavlin/wafer/load"
	"github.com/pgavlin/wafer/wasm/diag"
)

func Command(opts *options.Options) *cobra.Command {
	var trace bool

	command := &cobra.Command{
		Use:   "check [paths to modules]",
		Short: "Validate WebAssembly modules",
		Long:  "Decode and validate each module, reporting the location of the first failure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Config()
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range args {
				if !checkFile(cmd.OutOrStdout(), path, trace, func(path string) error {
					m, err := load.LoadFile(path, nil, cfg)
					if err == nil {
						m.Free()
					}
					return err
				}) {
					failed++
				}
			}
			if failed != 0 {
				return fmt.Errorf("%d of %d modules failed", failed, len(args))
			}
			return nil
		},
	}

	command.Flags().BoolVarP(&trace, "trace", "t", false, "print the decode context of each failure")
	return command
}

func checkFile(w io.Writer, path string, trace bool, decode func(path string) error) bool {
	err := decode(path)
	if err == nil {
		fmt.Fprintf(w, "%s: ok\n", path)
		return true
	}

	var derr *diag.Error
	if trace && errors.As(err, &derr) {
		fmt.Fprintf(w, "%s: %v\n%s", path, derr.Class, derr.Trace())
	} else {
		fmt.Fprintf(w, "%v\n", err)
	}
	return false
}
