package types

import (
	"fmt"
	"sync/atomic"
)

// TypeSpec describes a type to compose.
type TypeSpec struct {
	Name string
	Doc  string

	// Base supplies inherited attributes. Endpoints not found on the type
	// itself are looked up along the Base chain.
	Base *Descriptor

	// Body holds the type's own definitions. Default and Extend markers in
	// the body are unwrapped; plumbing declarations are rejected.
	Body Namespace

	// Plugins in priority order: the first plugin is the outermost layer.
	Plugins []*Plugin
}

// Descriptor is a composed type: a table of compiled behaviors and plain
// values that callers dispatch through. It is mutable only until sealed;
// a sealed Descriptor is safe for concurrent use.
type Descriptor struct {
	ID           string // UUID v7 assigned at composition.
	Name         string
	Doc          string // Merged documentation.
	Base         *Descriptor
	Plugins      []*Plugin
	Capabilities []string // Capability sets propagated from plugins.

	attrs  Namespace
	sealed atomic.Bool
}

// NewDescriptor returns an unsealed, empty descriptor.
func NewDescriptor(name string, base *Descriptor) *Descriptor {
	return &Descriptor{Name: name, Base: base}
}

// Install sets an own attribute. It returns ErrDescriptorSealed once the
// descriptor is sealed.
func (d *Descriptor) Install(name string, value any, doc string) error {
	if d.sealed.Load() {
		return fmt.Errorf("install %q on %s: %w", name, d.Name, ErrDescriptorSealed)
	}
	d.attrs.Describe(name, value, doc)
	return nil
}

// Seal makes the descriptor immutable.
func (d *Descriptor) Seal() {
	d.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (d *Descriptor) Sealed() bool {
	return d.sealed.Load()
}

// HasOwn reports whether name is an own attribute.
func (d *Descriptor) HasOwn(name string) bool {
	return d.attrs.Has(name)
}

// Names returns the own attribute names in installation order.
func (d *Descriptor) Names() []string {
	return d.attrs.Names()
}

// Lookup resolves name on the descriptor, then along its Base chain.
func (d *Descriptor) Lookup(name string) (Member, bool) {
	for cur := d; cur != nil; cur = cur.Base {
		if m, ok := cur.attrs.Get(name); ok {
			return m, true
		}
	}
	return Member{}, false
}

// DocOf returns the documentation of the attribute resolved for name.
func (d *Descriptor) DocOf(name string) string {
	m, _ := d.Lookup(name)
	return m.Doc
}

// Value returns the plain value resolved for name.
func (d *Descriptor) Value(name string) (any, error) {
	m, ok := d.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", d.Name, name, ErrNoSuchAttribute)
	}
	return m.Value, nil
}

// Method returns the behavior resolved for name as a Method.
func (d *Descriptor) Method(name string) (Method, error) {
	v, err := d.Value(name)
	if err != nil {
		return nil, err
	}
	fn, ok := AsMethod(v)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", d.Name, name, ErrNotCallable)
	}
	return fn, nil
}

// Property returns the accessor record resolved for name.
func (d *Descriptor) Property(name string) (Property, error) {
	v, err := d.Value(name)
	if err != nil {
		return Property{}, err
	}
	p, ok := AsProperty(v)
	if !ok {
		return Property{}, fmt.Errorf("%s.%s: %w", d.Name, name, ErrNotProperty)
	}
	return p, nil
}

// Call invokes the method resolved for name against self.
func (d *Descriptor) Call(self any, name string, args ...any) (any, error) {
	fn, err := d.Method(name)
	if err != nil {
		return nil, err
	}
	return fn(self, args...)
}

// GetAttr reads name on self. Properties go through their getter; any
// other attribute is returned as is.
func (d *Descriptor) GetAttr(self any, name string) (any, error) {
	v, err := d.Value(name)
	if err != nil {
		return nil, err
	}
	p, ok := AsProperty(v)
	if !ok {
		return v, nil
	}
	if p.Get == nil {
		return nil, fmt.Errorf("%s.%s get: %w", d.Name, name, ErrAccessorMissing)
	}
	return p.Get(self)
}

// SetAttr writes name on self through the property's setter.
func (d *Descriptor) SetAttr(self any, name string, value any) error {
	p, err := d.Property(name)
	if err != nil {
		return err
	}
	if p.Set == nil {
		return fmt.Errorf("%s.%s set: %w", d.Name, name, ErrAccessorMissing)
	}
	return p.Set(self, value)
}

// DelAttr deletes name on self through the property's deleter.
func (d *Descriptor) DelAttr(self any, name string) error {
	p, err := d.Property(name)
	if err != nil {
		return err
	}
	if p.Delete == nil {
		return fmt.Errorf("%s.%s delete: %w", d.Name, name, ErrAccessorMissing)
	}
	return p.Delete(self)
}

func (d *Descriptor) String() string {
	return d.Name
}
