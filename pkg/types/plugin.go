package types

import "fmt"

// Member is one named entry of a Namespace.
type Member struct {
	Name  string
	Value any    // Plain value or *Declaration.
	Doc   string // Optional one-line description.
}

// Namespace is an insertion-ordered set of members. The zero value is ready
// to use. Redefining a name keeps its original position.
type Namespace struct {
	order   []string
	members map[string]Member
}

// Describe defines name with value and a description.
func (n *Namespace) Describe(name string, value any, doc string) {
	if n.members == nil {
		n.members = make(map[string]Member)
	}
	if _, ok := n.members[name]; !ok {
		n.order = append(n.order, name)
	}
	n.members[name] = Member{Name: name, Value: value, Doc: doc}
}

// Set defines name with value and no description.
func (n *Namespace) Set(name string, value any) {
	n.Describe(name, value, "")
}

// Get returns the member defined under name.
func (n *Namespace) Get(name string) (Member, bool) {
	m, ok := n.members[name]
	return m, ok
}

// Has reports whether name is defined.
func (n *Namespace) Has(name string) bool {
	_, ok := n.members[name]
	return ok
}

// Names returns the defined names in insertion order.
func (n *Namespace) Names() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Members returns the members in insertion order.
func (n *Namespace) Members() []Member {
	out := make([]Member, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.members[name])
	}
	return out
}

// Plugin is a named, ordered source of declarations contributing to
// composed types. Plugins are shared between compositions and must not be
// modified once used.
type Plugin struct {
	Name string
	Doc  string
	Namespace
}

// NewPlugin returns an empty plugin.
func NewPlugin(name, doc string) *Plugin {
	return &Plugin{Name: name, Doc: doc}
}

// Define adds a member and returns the plugin for chaining.
func (p *Plugin) Define(name string, value any) *Plugin {
	p.Set(name, value)
	return p
}

// DefineDoc adds a described member and returns the plugin for chaining.
// The description of a plumbing layer becomes part of the compiled method's
// documentation.
func (p *Plugin) DefineDoc(name string, value any, doc string) *Plugin {
	p.Describe(name, value, doc)
	return p
}

// Lookup returns the unwrapped value of one of the plugin's own members.
// Plumbing layers use it through their owner argument to reach sibling
// members of the plugin that declared them.
func (p *Plugin) Lookup(name string) (any, bool) {
	m, ok := p.Get(name)
	if !ok {
		return nil, false
	}
	return Unwrap(m.Value), true
}

// Call invokes a sibling member of the plugin as a Method.
func (p *Plugin) Call(name string, self any, args ...any) (any, error) {
	v, ok := p.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", p.Name, name, ErrNoSuchAttribute)
	}
	fn, ok := AsMethod(v)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", p.Name, name, ErrNotCallable)
	}
	return fn(self, args...)
}

func (p *Plugin) String() string {
	return p.Name
}
