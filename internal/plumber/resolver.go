package plumber

import (
	"fmt"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// resolveEndpoint returns the terminal implementation for a pipeline: the
// attribute the target resolves for the name through own-then-base lookup,
// after every Default and Extend has been applied.
func resolveEndpoint(target *types.Descriptor, p *pipeline) (types.Member, error) {
	m, ok := target.Lookup(p.name)
	if !ok {
		return types.Member{}, fmt.Errorf("%s.%s: %w", target.Name, p.name, types.ErrMissingEndpoint)
	}
	if d, ok := m.Value.(*types.Declaration); ok && d != nil && d.IsPlumbing() {
		return types.Member{}, fmt.Errorf("%s.%s: endpoint is a plumbing declaration and %w", target.Name, p.name, types.ErrTypeConstraint)
	}

	switch p.kind() {
	case types.KindPlumbMethod:
		if _, ok := types.AsMethod(m.Value); !ok {
			return types.Member{}, fmt.Errorf("%s.%s: endpoint of type %T %w as a method", target.Name, p.name, m.Value, types.ErrTypeConstraint)
		}
	case types.KindPlumbProperty:
		if _, ok := types.AsProperty(m.Value); !ok {
			return types.Member{}, fmt.Errorf("%s.%s: endpoint of type %T %w as a property", target.Name, p.name, m.Value, types.ErrTypeConstraint)
		}
	}
	return m, nil
}
