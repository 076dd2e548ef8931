// Package load decodes modules held in files or readers.
package load

import (
	"fmt"
	"io"

	"github.com/pgavlin/wafer/wasm"
	"github.com/pgavlin/wafer/wasm/storage"
)

// LoadModule decodes a module read from r.
func LoadModule(r io.Reader, cfg *wasm.Config) (*wasm.Module, error) {
	return wasm.DecodeReader(r, nil, nil, cfg)
}

// LoadFile maps the file at path and decodes it. The mapping is released
// before LoadFile returns; the module holds copies of everything it keeps.
func LoadFile(path string, v wasm.CustomSectionVisitor, cfg *wasm.Config) (*wasm.Module, error) {
	f, err := Map(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := wasm.Decode(storage.NewBuffer(f.Bytes()), nil, v, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
