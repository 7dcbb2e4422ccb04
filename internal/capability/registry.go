// Package capability provides an in-memory types.CapabilityRegistry.
package capability

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// Registry is a process-wide, in-memory capability registry safe for
// concurrent use. The zero value is ready to use.
type Registry struct {
	mu       sync.RWMutex
	subjects map[string][]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{subjects: make(map[string][]string)}
}

// ImplementedBy returns the capabilities declared for subject in
// declaration order.
func (r *Registry) ImplementedBy(subject string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.subjects[subject]), nil
}

// Declare records capabilities for subject. Duplicates are ignored.
func (r *Registry) Declare(subject string, capabilities ...string) error {
	if subject == "" {
		return fmt.Errorf("subject: %w", types.ErrInvalidName)
	}
	for _, c := range capabilities {
		if c == "" {
			return fmt.Errorf("capability of %s: %w", subject, types.ErrInvalidName)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subjects == nil {
		r.subjects = make(map[string][]string)
	}
	have := r.subjects[subject]
	for _, c := range capabilities {
		if !slices.Contains(have, c) {
			have = append(have, c)
		}
	}
	r.subjects[subject] = have
	return nil
}

// Subjects returns every subject with at least one capability, sorted.
func (r *Registry) Subjects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.subjects))
	for s, caps := range r.subjects {
		if len(caps) > 0 {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

var _ types.CapabilityRegistry = (*Registry)(nil)
