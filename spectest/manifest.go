// Package spectest runs the decoder against conformance scripts converted to
// JSON manifests by wast2json.
package spectest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is a converted .wast script.
type Manifest struct {
	SourceFile string    `json:"source_filename"`
	Commands   []Command `json:"commands"`
}

// Command is one script command. Only the fields the decoder needs are kept.
type Command struct {
	Type string `json:"type"`
	Line int    `json:"line"`

	// Set for module commands and module assertions.
	Filename string `json:"filename,omitempty"`
	Name     string `json:"name,omitempty"`

	// Set for assertions.
	Text       string `json:"text,omitempty"`
	ModuleType string `json:"module_type,omitempty"`
}

func (c *Command) String() string {
	msg := fmt.Sprintf("line %d: %s", c.Line, c.Type)
	if c.Filename != "" {
		msg += " " + c.Filename
	}
	if c.Text != "" {
		msg += fmt.Sprintf(" (%q)", c.Text)
	}
	return msg
}

// ReadManifest reads the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}
