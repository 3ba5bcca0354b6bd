// Package manifest handles generics.toml program descriptions.
//
// A manifest declares classes, generic functions with their methods, and
// a list of calls to run against them. Method bodies are text/template
// strings evaluated against the running method's arguments.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a directory.
const FileName = "generics.toml"

// Manifest represents a generics.toml configuration.
type Manifest struct {
	Project  Project       `toml:"project"`
	Classes  []ClassDecl   `toml:"class"`
	Generics []GenericDecl `toml:"generic"`
	Calls    []CallDecl    `toml:"call"`

	// Path is the manifest file that was loaded (set at load time).
	Path string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name       string `toml:"name"`
	Version    string `toml:"version"`
	TraceLimit int    `toml:"trace-limit"`
}

// ClassDecl declares a class. An empty parent means Object.
type ClassDecl struct {
	Name   string   `toml:"name"`
	Parent string   `toml:"parent"`
	Slots  []string `toml:"slots"`
}

// GenericDecl declares a generic function and its methods.
type GenericDecl struct {
	Name    string       `toml:"name"`
	Methods []MethodDecl `toml:"method"`
}

// MethodDecl declares one method. Returns is the result template for
// primary and around methods; Log is appended to the program log.
type MethodDecl struct {
	Signature string `toml:"signature"`
	Role      string `toml:"role"`
	Returns   string `toml:"returns"`
	Log       string `toml:"log"`
}

// CallDecl declares a call to run.
type CallDecl struct {
	Generic     string    `toml:"generic"`
	Args        []ArgDecl `toml:"args"`
	Resolve     bool      `toml:"resolve"`      // go through Resolve and the dispatch cache
	Expect      *string   `toml:"expect"`       // expected result, formatted with %v
	ExpectError string    `toml:"expect-error"` // expected error substring
}

// ArgDecl is one call argument. Exactly one field must be set.
type ArgDecl struct {
	Class     string         `toml:"class"`
	Slots     map[string]any `toml:"slots"`
	Number    *float64       `toml:"number"`
	String    *string        `toml:"string"`
	Bool      *bool          `toml:"bool"`
	Array     []any          `toml:"array"`
	Null      bool           `toml:"null"`
	Undefined bool           `toml:"undefined"`
}

// Parse decodes manifest text. The result is validated.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile parses a manifest file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return m, nil
}

// Load parses the generics.toml file in dir.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from startDir to find a generics.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Dir returns the directory containing the manifest file.
func (m *Manifest) Dir() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// Generic returns the declaration of the named generic function, or nil.
func (m *Manifest) Generic(name string) *GenericDecl {
	for i := range m.Generics {
		if m.Generics[i].Name == name {
			return &m.Generics[i]
		}
	}
	return nil
}
