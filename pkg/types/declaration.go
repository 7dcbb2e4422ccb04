package types

import "fmt"

// Kind tags a Declaration.
type Kind int

// Declaration kinds.
const (
	KindDefault Kind = iota + 1
	KindExtend
	KindPlumbMethod
	KindPlumbProperty
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindExtend:
		return "extend"
	case KindPlumbMethod:
		return "plumb-method"
	case KindPlumbProperty:
		return "plumb-property"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Declaration marks a plugin member for composition. Build one with Default,
// Extend, Plumb, PlumbMethod or PlumbProperty; the zero value is not valid.
type Declaration struct {
	kind      Kind
	value     any
	method    PlumbFunc
	accessors PlumbAccessors
}

// Default provides a value for a name. The first plugin to default a name
// wins unless the composed type already has it; an Extend later in the
// plugin order overrides it without colliding.
func Default(value any) *Declaration {
	return &Declaration{kind: KindDefault, value: Unwrap(value)}
}

// Extend installs a value on the composed type as if it were declared there.
// Extending a name the type already owns collides, unless the existing value
// came from a Default in the same composition.
func Extend(value any) *Declaration {
	return &Declaration{kind: KindExtend, value: Unwrap(value)}
}

// PlumbMethod marks fn as a layer in the method chain for its name.
func PlumbMethod(fn PlumbFunc) *Declaration {
	return &Declaration{kind: KindPlumbMethod, method: fn}
}

// PlumbProperty marks an accessor layer in the property chain for its name.
// Nil accessors are allowed.
func PlumbProperty(get PlumbGetter, set PlumbSetter, del PlumbDeleter) *Declaration {
	return &Declaration{
		kind:      KindPlumbProperty,
		accessors: PlumbAccessors{Get: get, Set: set, Delete: del},
	}
}

// Plumb marks v for plumbing. v must be a plumbing function, a function
// with the PlumbFunc signature, PlumbAccessors, or an existing plumbing
// declaration; Default and Extend wrappers around it are stripped first.
// Anything else fails with ErrTypeConstraint.
func Plumb(v any) (*Declaration, error) {
	switch x := Unwrap(v).(type) {
	case PlumbFunc:
		return PlumbMethod(x), nil
	case func(*Plugin, Method, any, ...any) (any, error):
		return PlumbMethod(x), nil
	case PlumbAccessors:
		return PlumbProperty(x.Get, x.Set, x.Delete), nil
	case *PlumbAccessors:
		if x != nil {
			return PlumbProperty(x.Get, x.Set, x.Delete), nil
		}
	case *Declaration:
		if x != nil && x.IsPlumbing() {
			return x, nil
		}
	}
	return nil, fmt.Errorf("value of type %T %w", v, ErrTypeConstraint)
}

// Unwrap strips Default and Extend markers recursively and returns the
// innermost value.
func Unwrap(v any) any {
	d, ok := v.(*Declaration)
	if !ok || d == nil || d.IsPlumbing() {
		return v
	}
	return Unwrap(d.value)
}

// Kind returns the declaration kind.
func (d *Declaration) Kind() Kind { return d.kind }

// Value returns the unwrapped value of a Default or Extend declaration.
func (d *Declaration) Value() any { return d.value }

// Method returns the layer function of a plumb-method declaration.
func (d *Declaration) Method() PlumbFunc { return d.method }

// Accessors returns the layer accessors of a plumb-property declaration.
func (d *Declaration) Accessors() PlumbAccessors { return d.accessors }

// Closes reports whether the declaration closes its pipeline.
func (d *Declaration) Closes() bool {
	return d.kind == KindDefault || d.kind == KindExtend
}

// IsPlumbing reports whether the declaration is a chain layer.
func (d *Declaration) IsPlumbing() bool {
	return d.kind == KindPlumbMethod || d.kind == KindPlumbProperty
}

func (d *Declaration) String() string {
	return d.kind.String()
}
