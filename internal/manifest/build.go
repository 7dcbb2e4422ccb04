package manifest

import (
	"fmt"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// traceSep separates the layers a stub call passes through.
const traceSep = " > "

// Result is the outcome of composing one manifest type.
type Result struct {
	Type       string
	Descriptor *types.Descriptor // Nil when Err is set.
	Err        error
}

// BuildPlugins builds stub plugins for every manifest plugin, keyed by name.
func (m *Manifest) BuildPlugins() map[string]*types.Plugin {
	out := make(map[string]*types.Plugin, len(m.Plugins))
	for _, p := range m.Plugins {
		plugin := types.NewPlugin(p.Name, p.Doc)
		for _, mem := range p.Members {
			plugin.DefineDoc(mem.Name, memberValue(p.Name, mem), mem.Doc)
		}
		out[p.Name] = plugin
	}
	return out
}

// DeclareCapabilities records each plugin's capabilities in registry.
func (m *Manifest) DeclareCapabilities(registry types.CapabilityRegistry) error {
	for _, p := range m.Plugins {
		if len(p.Capabilities) == 0 {
			continue
		}
		if err := registry.Declare(p.Name, p.Capabilities...); err != nil {
			return fmt.Errorf("declare capabilities of %s: %w", p.Name, err)
		}
	}
	return nil
}

// Compose composes every manifest type in order. A failing type does not
// stop the others, but types based on it fail with ErrUnknownType.
func (m *Manifest) Compose(composer types.Composer) []Result {
	plugins := m.BuildPlugins()
	composed := make(map[string]*types.Descriptor, len(m.Types))
	results := make([]Result, 0, len(m.Types))

	for _, t := range m.Types {
		spec := types.TypeSpec{Name: t.Name, Doc: t.Doc}
		if t.Base != "" {
			base, ok := composed[t.Base]
			if !ok {
				results = append(results, Result{Type: t.Name, Err: fmt.Errorf("base %s did not compose: %w", t.Base, ErrUnknownType)})
				continue
			}
			spec.Base = base
		}
		for _, name := range t.Plugins {
			spec.Plugins = append(spec.Plugins, plugins[name])
		}
		for _, mem := range t.Body {
			spec.Body.Describe(mem.Name, memberValue(t.Name, mem), mem.Doc)
		}

		d, err := composer.Compose(spec)
		if err == nil {
			composed[t.Name] = d
		}
		results = append(results, Result{Type: t.Name, Descriptor: d, Err: err})
	}
	return results
}

// memberValue builds the stub value for a member declared by source.
func memberValue(source string, mem Member) any {
	switch mem.Kind {
	case KindPlumbMethod:
		return types.PlumbMethod(traceLayer)
	case KindPlumbProperty:
		return types.PlumbProperty(traceGetLayer, passSetLayer, passDeleteLayer)
	case KindDefault:
		return types.Default(shapedValue(source, mem))
	case KindExtend:
		return types.Extend(shapedValue(source, mem))
	case KindMethod:
		return endpointMethod(source, mem.Name)
	case KindProperty:
		return endpointProperty(source, mem.Name)
	default:
		return mem.Value
	}
}

func shapedValue(source string, mem Member) any {
	switch mem.Shape {
	case ShapeProperty:
		return endpointProperty(source, mem.Name)
	case ShapeValue:
		return mem.Value
	default:
		return endpointMethod(source, mem.Name)
	}
}

func endpointMethod(source, name string) types.Method {
	label := source + "." + name
	return func(any, ...any) (any, error) { return label, nil }
}

func endpointProperty(source, name string) types.Property {
	label := source + "." + name
	return types.Property{
		Get:    func(any) (any, error) { return label, nil },
		Set:    func(any, any) error { return nil },
		Delete: func(any) error { return nil },
	}
}

func traceLayer(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
	v, err := next(self, args...)
	if err != nil {
		return nil, err
	}
	return fmt.Sprint(owner.Name, traceSep, v), nil
}

func traceGetLayer(owner *types.Plugin, next types.Getter, self any) (any, error) {
	v, err := next(self)
	if err != nil {
		return nil, err
	}
	return fmt.Sprint(owner.Name, traceSep, v), nil
}

func passSetLayer(owner *types.Plugin, next types.Setter, self any, value any) error {
	return next(self, value)
}

func passDeleteLayer(owner *types.Plugin, next types.Deleter, self any) error {
	return next(self)
}

// Trace invokes the stub behavior installed for name and returns the path
// the call took, outermost layer first. Plain values are formatted as is.
func Trace(d *types.Descriptor, name string) (string, error) {
	v, err := d.Value(name)
	if err != nil {
		return "", err
	}
	if fn, ok := types.AsMethod(v); ok {
		out, err := fn(nil)
		return fmt.Sprint(out), err
	}
	if p, ok := types.AsProperty(v); ok {
		if p.Get == nil {
			return "", nil
		}
		out, err := p.Get(nil)
		return fmt.Sprint(out), err
	}
	return fmt.Sprint(v), nil
}

// Shape names the behavior shape installed for name: method, property or
// value.
func Shape(d *types.Descriptor, name string) string {
	v, err := d.Value(name)
	if err != nil {
		return ""
	}
	if _, ok := types.AsMethod(v); ok {
		return ShapeMethod
	}
	if _, ok := types.AsProperty(v); ok {
		return ShapeProperty
	}
	return ShapeValue
}
