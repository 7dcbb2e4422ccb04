package plumber

import (
	"fmt"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// entrance threads layers around tail, first layer outermost. With no
// layers left the tail itself is the result.
func entrance[F any](layers []func(next F) F, tail F) F {
	if len(layers) == 0 {
		return tail
	}
	return layers[0](entrance(layers[1:], tail))
}

// compile turns a pipeline and its endpoint into the value installed on the
// composed type, together with its documentation.
func compile(p *pipeline, endpoint types.Member) (any, string) {
	switch p.kind() {
	case types.KindPlumbMethod:
		tail, _ := types.AsMethod(endpoint.Value)
		return compileMethod(p, tail), methodDoc(p, endpoint.Doc)
	case types.KindPlumbProperty:
		tail, _ := types.AsProperty(endpoint.Value)
		return compileProperty(p, tail), endpoint.Doc
	default:
		return endpoint.Value, endpoint.Doc
	}
}

func compileMethod(p *pipeline, tail types.Method) types.Method {
	layers := make([]func(types.Method) types.Method, 0, len(p.entries))
	for _, e := range p.entries {
		fn, owner := e.decl.Method(), e.owner
		layers = append(layers, func(next types.Method) types.Method {
			return func(self any, args ...any) (any, error) {
				return fn(owner, next, self, args...)
			}
		})
	}
	return entrance(layers, tail)
}

// compileProperty builds the getter, setter and deleter chains
// independently. A layer joins only the chains for the accessors it
// supplies.
func compileProperty(p *pipeline, tail types.Property) types.Property {
	var gets []func(types.Getter) types.Getter
	var sets []func(types.Setter) types.Setter
	var dels []func(types.Deleter) types.Deleter

	for _, e := range p.entries {
		acc, owner := e.decl.Accessors(), e.owner
		if get := acc.Get; get != nil {
			gets = append(gets, func(next types.Getter) types.Getter {
				return func(self any) (any, error) { return get(owner, next, self) }
			})
		}
		if set := acc.Set; set != nil {
			sets = append(sets, func(next types.Setter) types.Setter {
				return func(self any, value any) error { return set(owner, next, self, value) }
			})
		}
		if del := acc.Delete; del != nil {
			dels = append(dels, func(next types.Deleter) types.Deleter {
				return func(self any) error { return del(owner, next, self) }
			})
		}
	}

	getTail, setTail, delTail := tail.Get, tail.Set, tail.Delete
	if getTail == nil && len(gets) > 0 {
		getTail = func(any) (any, error) { return nil, missingAccessor(p.name, "get") }
	}
	if setTail == nil && len(sets) > 0 {
		setTail = func(any, any) error { return missingAccessor(p.name, "set") }
	}
	if delTail == nil && len(dels) > 0 {
		delTail = func(any) error { return missingAccessor(p.name, "delete") }
	}

	return types.Property{
		Get:    entrance(gets, getTail),
		Set:    entrance(sets, setTail),
		Delete: entrance(dels, delTail),
	}
}

func missingAccessor(name, accessor string) error {
	return fmt.Errorf("%s %s: %w", name, accessor, types.ErrAccessorMissing)
}
