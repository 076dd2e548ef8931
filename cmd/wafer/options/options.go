// Package options holds the decoder settings shared by wafer's commands.
package options

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgavlin/wafer/wasm"
)

type Options struct {
	Verbose bool

	MaxDepth  int
	MaxLocals uint32
	MaxPages  uint32

	logger *zap.Logger
}

// Register adds the shared flags to the root command.
func (o *Options) Register(cmd *cobra.Command) {
	defaults := wasm.DefaultConfig()

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "log decoder activity to stderr")
	flags.IntVar(&o.MaxDepth, "max-depth", defaults.MaxContextDepth, "context stack capacity")
	flags.Uint32Var(&o.MaxLocals, "max-locals", defaults.MaxLocals, "maximum locals per function")
	flags.Uint32Var(&o.MaxPages, "max-pages", defaults.MaxMemoryPages, "maximum memory pages")
}

// Logger returns the logger selected by --verbose.
func (o *Options) Logger() (*zap.Logger, error) {
	if o.logger != nil {
		return o.logger, nil
	}
	if !o.Verbose {
		o.logger = zap.NewNop()
		return o.logger, nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	o.logger = l
	return l, nil
}

// Config builds and validates a decoder configuration from the flags.
func (o *Options) Config() (*wasm.Config, error) {
	logger, err := o.Logger()
	if err != nil {
		return nil, err
	}

	cfg := wasm.DefaultConfig()
	cfg.MaxContextDepth = o.MaxDepth
	cfg.MaxLocals = o.MaxLocals
	cfg.MaxMemoryPages = o.MaxPages
	cfg.Logger = logger
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Sync flushes the logger, if one was built.
func (o *Options) Sync() {
	if o.logger != nil {
		_ = o.logger.Sync()
	}
}
