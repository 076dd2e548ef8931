//go:build !unix

package load

import "os"

// Mapping holds a file's contents.
type Mapping struct {
	data []byte
}

// Map reads the file at path into memory.
func Map(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the file's contents.
func (m *Mapping) Bytes() []byte {
	return m.data
}

func (m *Mapping) Close() error {
	m.data = nil
	return nil
}
