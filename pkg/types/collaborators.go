package types

import (
	"log/slog"
	"time"
)

// Composer builds Descriptors from TypeSpecs.
type Composer interface {
	// Compose runs the full composition for spec. On error no Descriptor
	// is returned.
	Compose(spec TypeSpec) (*Descriptor, error)
}

// CapabilityRegistry records which capability sets a subject (a plugin or a
// composed type, by name) satisfies. Composition copies every plugin's
// capability sets onto the composed type.
type CapabilityRegistry interface {
	// ImplementedBy returns the capability sets declared for subject.
	// An unknown subject yields an empty result, not an error.
	ImplementedBy(subject string) ([]string, error)

	// Declare records that subject satisfies the given capability sets.
	// Declaring an already known capability is a no-op.
	Declare(subject string, capabilities ...string) error
}

// Journal receives every successfully composed Descriptor.
type Journal interface {
	Record(d *Descriptor) error
}

// Config holds the optional collaborators of a Composer. The zero value is
// valid: no capability propagation, no journal, slog.Default() logging.
type Config struct {
	Registry CapabilityRegistry
	Journal  Journal
	Logger   *slog.Logger
}

// CompositionRecord is the persisted summary of one composed Descriptor.
// Plugins are listed in priority order; Names are the own attribute names
// of the Descriptor.
type CompositionRecord struct {
	CompositionID string    `json:"composition_id"`
	TypeName      string    `json:"type_name"`
	Doc           string    `json:"doc,omitempty"`
	Plugins       []string  `json:"plugins"`
	Names         []string  `json:"names"`
	Capabilities  []string  `json:"capabilities,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewCompositionRecord summarises d.
func NewCompositionRecord(d *Descriptor) CompositionRecord {
	plugins := make([]string, 0, len(d.Plugins))
	for _, p := range d.Plugins {
		plugins = append(plugins, p.Name)
	}
	return CompositionRecord{
		CompositionID: d.ID,
		TypeName:      d.Name,
		Doc:           d.Doc,
		Plugins:       plugins,
		Names:         d.Names(),
		Capabilities:  append([]string(nil), d.Capabilities...),
		CreatedAt:     time.Now().UTC(),
	}
}
