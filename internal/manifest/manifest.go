// Package manifest loads YAML composition manifests. A manifest names
// plugins, the kind of each member they declare, and the types composed
// from them. Behaviors are stubs that report the path a call takes through
// the chain, so a manifest can be checked for collisions and missing
// endpoints without any Go code.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Member kinds accepted in a manifest.
const (
	KindPlumbMethod   = "plumb-method"
	KindPlumbProperty = "plumb-property"
	KindDefault       = "default"
	KindExtend        = "extend"
	KindMethod        = "method"
	KindProperty      = "property"
	KindValue         = "value"
)

// Shapes of default and extend members.
const (
	ShapeMethod   = "method"
	ShapeProperty = "property"
	ShapeValue    = "value"
)

// Manifest errors.
var (
	ErrUnknownKind   = errors.New("unknown member kind")
	ErrUnknownShape  = errors.New("unknown member shape")
	ErrUnknownPlugin = errors.New("unknown plugin")
	ErrUnknownType   = errors.New("unknown type")
	ErrDuplicateName = errors.New("duplicate name")
	ErrMissingName   = errors.New("missing name")
)

// Manifest is the root document.
type Manifest struct {
	Plugins []Plugin `yaml:"plugins"`
	Types   []Type   `yaml:"types"`
}

// Plugin declares one plugin.
type Plugin struct {
	Name         string   `yaml:"name"`
	Doc          string   `yaml:"doc,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`
	Members      []Member `yaml:"members"`
}

// Type declares one composed type. Base names a type declared earlier in
// the same manifest.
type Type struct {
	Name    string   `yaml:"name"`
	Doc     string   `yaml:"doc,omitempty"`
	Base    string   `yaml:"base,omitempty"`
	Plugins []string `yaml:"plugins"`
	Body    []Member `yaml:"body,omitempty"`
}

// Member declares one named member of a plugin or type body.
type Member struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Shape string `yaml:"shape,omitempty"`
	Doc   string `yaml:"doc,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names, kinds and references.
func (m *Manifest) Validate() error {
	plugins := make(map[string]bool, len(m.Plugins))
	for _, p := range m.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugin: %w", ErrMissingName)
		}
		if plugins[p.Name] {
			return fmt.Errorf("plugin %s: %w", p.Name, ErrDuplicateName)
		}
		plugins[p.Name] = true
		if err := validateMembers("plugin "+p.Name, p.Members, true); err != nil {
			return err
		}
	}

	typeNames := make(map[string]bool, len(m.Types))
	for _, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("type: %w", ErrMissingName)
		}
		if typeNames[t.Name] {
			return fmt.Errorf("type %s: %w", t.Name, ErrDuplicateName)
		}
		if t.Base != "" && !typeNames[t.Base] {
			return fmt.Errorf("type %s base %s: %w", t.Name, t.Base, ErrUnknownType)
		}
		typeNames[t.Name] = true
		for _, name := range t.Plugins {
			if !plugins[name] {
				return fmt.Errorf("type %s: %w %q", t.Name, ErrUnknownPlugin, name)
			}
		}
		if err := validateMembers("type "+t.Name, t.Body, false); err != nil {
			return err
		}
	}
	return nil
}

func validateMembers(where string, members []Member, inPlugin bool) error {
	seen := make(map[string]bool, len(members))
	for _, mem := range members {
		if mem.Name == "" {
			return fmt.Errorf("%s member: %w", where, ErrMissingName)
		}
		if seen[mem.Name] {
			return fmt.Errorf("%s member %s: %w", where, mem.Name, ErrDuplicateName)
		}
		seen[mem.Name] = true

		switch mem.Kind {
		case KindPlumbMethod, KindPlumbProperty:
			if !inPlugin {
				return fmt.Errorf("%s member %s: %w %q in a type body", where, mem.Name, ErrUnknownKind, mem.Kind)
			}
		case KindDefault, KindExtend:
			switch mem.Shape {
			case "", ShapeMethod, ShapeProperty, ShapeValue:
			default:
				return fmt.Errorf("%s member %s: %w %q", where, mem.Name, ErrUnknownShape, mem.Shape)
			}
		case KindMethod, KindProperty, KindValue:
		default:
			return fmt.Errorf("%s member %s: %w %q", where, mem.Name, ErrUnknownKind, mem.Kind)
		}
	}
	return nil
}
