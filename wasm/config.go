package wasm

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pgavlin/wafer/wasm/types"
)

var validate = validator.New()

// Config bounds the resources a decode may use.
type Config struct {
	// MaxContextDepth is the capacity of the context stack, at most
	// diag.MaxDepth.
	MaxContextDepth int `validate:"min=1,max=32"`
	// MaxLocals bounds the number of locals a function body may declare.
	MaxLocals uint32 `validate:"min=1"`
	// MaxMemoryPages bounds memory limits.
	MaxMemoryPages uint32 `validate:"min=1,max=65536"`
	// StreamScratch is the size of the scratch space used when decoding from an
	// io.Reader.
	StreamScratch int `validate:"min=16"`
	// KeepCustomSections copies custom section payloads into the module.
	KeepCustomSections bool
	// Logger receives debug records. Nil selects a no-op logger.
	Logger *zap.Logger `validate:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxContextDepth:    8,
		MaxLocals:          50000,
		MaxMemoryPages:     types.MaxMemoryPages,
		StreamScratch:      4096,
		KeepCustomSections: true,
	}
}

// Validate checks the configuration's bounds.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid decoder config: %w", err)
	}
	return nil
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
