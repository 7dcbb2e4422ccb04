package types

// Method is a callable behavior installed on a composed type. self is the
// instance the behavior is invoked against.
type Method func(self any, args ...any) (any, error)

// Accessor slots of a Property.
type (
	Getter  func(self any) (any, error)
	Setter  func(self any, value any) error
	Deleter func(self any) error
)

// Property is an accessor record. Any slot may be nil.
type Property struct {
	Get    Getter
	Set    Setter
	Delete Deleter
}

// PlumbFunc is one layer of a method chain. owner is the plugin that
// declared the layer, next is the compiled remainder of the chain.
type PlumbFunc func(owner *Plugin, next Method, self any, args ...any) (any, error)

// Accessor layers of a plumbed property.
type (
	PlumbGetter  func(owner *Plugin, next Getter, self any) (any, error)
	PlumbSetter  func(owner *Plugin, next Setter, self any, value any) error
	PlumbDeleter func(owner *Plugin, next Deleter, self any) error
)

// PlumbAccessors is one layer of a property chain. A nil slot means the
// layer contributes nothing to that accessor's chain.
type PlumbAccessors struct {
	Get    PlumbGetter
	Set    PlumbSetter
	Delete PlumbDeleter
}

// AsMethod reports whether v can be used as a Method and returns it.
// Plain functions with the Method signature are accepted.
func AsMethod(v any) (Method, bool) {
	switch fn := v.(type) {
	case Method:
		return fn, fn != nil
	case func(any, ...any) (any, error):
		return Method(fn), fn != nil
	default:
		return nil, false
	}
}

// AsProperty reports whether v is a Property (or a non-nil *Property) and
// returns it by value.
func AsProperty(v any) (Property, bool) {
	switch p := v.(type) {
	case Property:
		return p, true
	case *Property:
		if p == nil {
			return Property{}, false
		}
		return *p, true
	default:
		return Property{}, false
	}
}
