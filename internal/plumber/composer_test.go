package plumber

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/plumbing/internal/capability"
	"github.com/mesh-intelligence/plumbing/pkg/types"
)

type instance struct {
	name  string
	x     any
	trace []string
}

func quietComposer(registry types.CapabilityRegistry, journal types.Journal) *Composer {
	return NewComposer(types.Config{
		Registry: registry,
		Journal:  journal,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func method(fn func(self *instance, args ...any) (any, error)) types.Method {
	return func(self any, args ...any) (any, error) {
		return fn(self.(*instance), args...)
	}
}

// tracer returns a plumbing layer that records its plugin name and then
// delegates to next.
func tracer() types.PlumbFunc {
	return func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
		inst := self.(*instance)
		inst.trace = append(inst.trace, owner.Name)
		return next(self, args...)
	}
}

func greetingPlugins() (*types.Plugin, *types.Plugin) {
	p1 := types.NewPlugin("P1", "Adds a salutation.").
		DefineDoc("greet", types.PlumbMethod(func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
			v, err := next(self, args...)
			if err != nil {
				return nil, err
			}
			return "Hi, " + v.(string), nil
		}), "Prefixes a salutation.")
	p2 := types.NewPlugin("P2", "Provides the greeting target.").
		DefineDoc("greet", types.Default(method(func(*instance, ...any) (any, error) {
			return "World", nil
		})), "Returns the target.")
	return p1, p2
}

func TestCompose_PlumbMethodOverDefault(t *testing.T) {
	p1, p2 := greetingPlugins()

	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{
		Name:    "Hello",
		Plugins: []*types.Plugin{p1, p2},
	})
	require.NoError(t, err)

	got, err := d.Call(&instance{}, "greet")
	require.NoError(t, err)
	assert.Equal(t, "Hi, World", got)
	assert.True(t, d.Sealed())
	assert.NotEmpty(t, d.ID)
}

func TestCompose_ExtendCollidesWithBody(t *testing.T) {
	spec := types.TypeSpec{
		Name:    "Valued",
		Plugins: []*types.Plugin{types.NewPlugin("P1", "").Define("value", types.Extend(42))},
	}
	spec.Body.Set("value", 1)

	d, err := quietComposer(nil, nil).Compose(spec)
	require.Error(t, err)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, types.ErrPlumbingCollision)

	var ce *types.CollisionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "value", ce.Name)
	assert.Equal(t, "P1", ce.Plugin)
}

func TestCompose_PlumbPropertyOverDefaultProperty(t *testing.T) {
	p1 := types.NewPlugin("P1", "").Define("x", types.PlumbProperty(
		func(owner *types.Plugin, next types.Getter, self any) (any, error) {
			v, err := next(self)
			if err != nil {
				return nil, err
			}
			return v.(int) * 2, nil
		}, nil, nil))
	p2 := types.NewPlugin("P2", "").Define("x", types.Default(types.Property{
		Get: func(any) (any, error) { return 5, nil },
	}))

	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{Name: "X", Plugins: []*types.Plugin{p1, p2}})
	require.NoError(t, err)

	got, err := d.GetAttr(&instance{}, "x")
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestCompose_LayersOverBodyEndpoint(t *testing.T) {
	spec := types.TypeSpec{
		Name: "M",
		Plugins: []*types.Plugin{
			types.NewPlugin("P1", "").Define("m", types.PlumbMethod(tracer())),
			types.NewPlugin("P2", "").Define("m", types.PlumbMethod(tracer())),
		},
	}
	spec.Body.Set("m", method(func(self *instance, args ...any) (any, error) {
		self.trace = append(self.trace, "endpoint")
		return len(args), nil
	}))

	d, err := quietComposer(nil, nil).Compose(spec)
	require.NoError(t, err)

	inst := &instance{}
	got, err := d.Call(inst, "m", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []string{"P1", "P2", "endpoint"}, inst.trace)
}

func TestCompose_OuterLayerDecidesWhetherToContinue(t *testing.T) {
	short := types.PlumbMethod(func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
		if args[0] == "stop" {
			return "stopped by " + owner.Name, nil
		}
		return next(self, args...)
	})
	spec := types.TypeSpec{
		Name: "S",
		Plugins: []*types.Plugin{
			types.NewPlugin("Guard", "").Define("run", short),
			types.NewPlugin("Inner", "").Define("run", types.PlumbMethod(tracer())),
		},
	}
	spec.Body.Set("run", method(func(*instance, ...any) (any, error) { return "ran", nil }))

	d, err := quietComposer(nil, nil).Compose(spec)
	require.NoError(t, err)

	inst := &instance{}
	got, err := d.Call(inst, "run", "stop")
	require.NoError(t, err)
	assert.Equal(t, "stopped by Guard", got)
	assert.Empty(t, inst.trace)

	got, err = d.Call(inst, "run", "go")
	require.NoError(t, err)
	assert.Equal(t, "ran", got)
	assert.Equal(t, []string{"Inner"}, inst.trace)
}

func TestCompose_IdentityWithoutLayers(t *testing.T) {
	spec := types.TypeSpec{
		Name: "Plain",
		Plugins: []*types.Plugin{
			types.NewPlugin("P1", "").Define("limit", types.Default(7)).Define("ignored", "plain"),
		},
	}
	d, err := quietComposer(nil, nil).Compose(spec)
	require.NoError(t, err)

	v, err := d.Value("limit")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.False(t, d.HasOwn("ignored"), "plain plugin members are not installed")
}

func TestCompose_OverrideRules(t *testing.T) {
	plugin := func(name string, decl *types.Declaration) *types.Plugin {
		return types.NewPlugin(name, "").Define("a", decl)
	}
	tests := []struct {
		name      string
		body      any
		plugins   []*types.Plugin
		want      any
		collision bool
	}{
		{
			name:    "default then extend: extend wins",
			plugins: []*types.Plugin{plugin("P1", types.Default(1)), plugin("P2", types.Extend(2))},
			want:    2,
		},
		{
			name:      "extend then extend collides",
			plugins:   []*types.Plugin{plugin("P1", types.Extend(1)), plugin("P2", types.Extend(2))},
			collision: true,
		},
		{
			name:    "extend then default: extend stays",
			plugins: []*types.Plugin{plugin("P1", types.Extend(1)), plugin("P2", types.Default(2))},
			want:    1,
		},
		{
			name:    "first default wins",
			plugins: []*types.Plugin{plugin("P1", types.Default(1)), plugin("P2", types.Default(2))},
			want:    1,
		},
		{
			name:    "body beats default",
			body:    0,
			plugins: []*types.Plugin{plugin("P1", types.Default(1))},
			want:    0,
		},
		{
			name:      "extend collides with body even after an ignored default",
			body:      0,
			plugins:   []*types.Plugin{plugin("P1", types.Default(1)), plugin("P2", types.Extend(2))},
			collision: true,
		},
		{
			name: "alternating defaults and extend",
			plugins: []*types.Plugin{
				plugin("P1", types.Default(1)),
				plugin("P2", types.Default(2)),
				plugin("P3", types.Extend(3)),
				plugin("P4", types.Default(4)),
			},
			want: 3,
		},
		{
			name: "extend after extend that cleared the default collides",
			plugins: []*types.Plugin{
				plugin("P1", types.Default(1)),
				plugin("P2", types.Extend(2)),
				plugin("P3", types.Extend(3)),
			},
			collision: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := types.TypeSpec{Name: "T", Plugins: tt.plugins}
			if tt.body != nil {
				spec.Body.Set("a", tt.body)
			}
			d, err := quietComposer(nil, nil).Compose(spec)
			if tt.collision {
				assert.ErrorIs(t, err, types.ErrPlumbingCollision)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			v, err := d.Value("a")
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCompose_Collisions(t *testing.T) {
	getter := types.PlumbProperty(func(owner *types.Plugin, next types.Getter, self any) (any, error) {
		return next(self)
	}, nil, nil)
	layer := types.PlumbMethod(tracer())

	tests := []struct {
		name    string
		plugins []*types.Plugin
	}{
		{
			name: "property after method",
			plugins: []*types.Plugin{
				types.NewPlugin("P1", "").Define("n", layer),
				types.NewPlugin("P2", "").Define("n", getter),
			},
		},
		{
			name: "method after property",
			plugins: []*types.Plugin{
				types.NewPlugin("P1", "").Define("n", getter),
				types.NewPlugin("P2", "").Define("n", layer),
			},
		},
		{
			name: "plumbing behind a default",
			plugins: []*types.Plugin{
				types.NewPlugin("P1", "").Define("n", types.Default(method(func(*instance, ...any) (any, error) { return nil, nil }))),
				types.NewPlugin("P2", "").Define("n", layer),
			},
		},
		{
			name: "plumbing behind an extend",
			plugins: []*types.Plugin{
				types.NewPlugin("P1", "").Define("n", types.Extend(method(func(*instance, ...any) (any, error) { return nil, nil }))),
				types.NewPlugin("P2", "").Define("n", layer),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := quietComposer(nil, nil).Compose(types.TypeSpec{Name: "C", Plugins: tt.plugins})
			assert.ErrorIs(t, err, types.ErrPlumbingCollision)
			assert.Nil(t, d)
		})
	}
}

func TestCompose_MissingEndpoint(t *testing.T) {
	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{
		Name:    "Lonely",
		Plugins: []*types.Plugin{types.NewPlugin("P1", "").Define("greet", types.PlumbMethod(tracer()))},
	})
	assert.ErrorIs(t, err, types.ErrMissingEndpoint)
	assert.Nil(t, d)
}

func TestCompose_EndpointShapeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		decl     *types.Declaration
		endpoint any
	}{
		{"method over plain value", types.PlumbMethod(tracer()), 3},
		{"method over property", types.PlumbMethod(tracer()), types.Property{}},
		{"property over method", types.PlumbProperty(nil, nil, nil), method(func(*instance, ...any) (any, error) { return nil, nil })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := types.TypeSpec{Name: "T", Plugins: []*types.Plugin{types.NewPlugin("P1", "").Define("n", tt.decl)}}
			spec.Body.Set("n", tt.endpoint)
			_, err := quietComposer(nil, nil).Compose(spec)
			assert.ErrorIs(t, err, types.ErrTypeConstraint)
		})
	}
}

func TestCompose_InvalidInput(t *testing.T) {
	c := quietComposer(nil, nil)

	_, err := c.Compose(types.TypeSpec{})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	_, err = c.Compose(types.TypeSpec{Name: "T", Plugins: []*types.Plugin{nil}})
	assert.ErrorIs(t, err, types.ErrNilPlugin)

	spec := types.TypeSpec{Name: "T"}
	spec.Body.Set("m", types.PlumbMethod(tracer()))
	_, err = c.Compose(spec)
	assert.ErrorIs(t, err, types.ErrTypeConstraint)

	_, err = c.Compose(types.TypeSpec{
		Name:    "T",
		Plugins: []*types.Plugin{types.NewPlugin("P1", "").Define("m", types.PlumbMethod(nil))},
	})
	assert.ErrorIs(t, err, types.ErrTypeConstraint)
}

func TestCompose_EndpointFromBase(t *testing.T) {
	base, err := quietComposer(nil, nil).Compose(func() types.TypeSpec {
		s := types.TypeSpec{Name: "Base"}
		s.Body.Describe("greet", method(func(self *instance, _ ...any) (any, error) {
			return "hello " + self.name, nil
		}), "Greets by name.")
		return s
	}())
	require.NoError(t, err)

	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{
		Name: "Child",
		Base: base,
		Plugins: []*types.Plugin{types.NewPlugin("Loud", "").Define("greet", types.PlumbMethod(
			func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
				v, err := next(self, args...)
				if err != nil {
					return nil, err
				}
				return strings.ToUpper(v.(string)), nil
			}))},
	})
	require.NoError(t, err)

	got, err := d.Call(&instance{name: "ada"}, "greet")
	require.NoError(t, err)
	assert.Equal(t, "HELLO ADA", got)

	got, err = base.Call(&instance{name: "ada"}, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hello ada", got, "composing a child must not change the base")
}

func TestCompose_OwnerReference(t *testing.T) {
	owner := types.NewPlugin("Polite", "").
		Define("salutation", "Dear").
		Define("greet", types.PlumbMethod(func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
			v, err := next(self, args...)
			if err != nil {
				return nil, err
			}
			s, _ := owner.Lookup("salutation")
			return fmt.Sprintf("%s %s", s, v), nil
		}))
	spec := types.TypeSpec{Name: "Letter", Plugins: []*types.Plugin{owner}}
	spec.Body.Set("salutation", "Yo")
	spec.Body.Set("greet", method(func(self *instance, _ ...any) (any, error) { return self.name, nil }))

	d, err := quietComposer(nil, nil).Compose(spec)
	require.NoError(t, err)

	got, err := d.Call(&instance{name: "Grace"}, "greet")
	require.NoError(t, err)
	assert.Equal(t, "Dear Grace", got, "owner resolves to the declaring plugin, not the composed type")
}

func TestCompose_PropertyChainsAreIndependent(t *testing.T) {
	p1 := types.NewPlugin("Upper", "").Define("x", types.PlumbProperty(
		nil,
		func(owner *types.Plugin, next types.Setter, self any, value any) error {
			return next(self, strings.ToUpper(value.(string)))
		},
		func(owner *types.Plugin, next types.Deleter, self any) error {
			self.(*instance).trace = append(self.(*instance).trace, "delete "+owner.Name)
			return next(self)
		}))
	p2 := types.NewPlugin("Suffix", "").Define("x", types.PlumbProperty(
		func(owner *types.Plugin, next types.Getter, self any) (any, error) {
			v, err := next(self)
			if err != nil {
				return nil, err
			}
			return v.(string) + "!", nil
		}, nil, nil))

	spec := types.TypeSpec{Name: "P", Plugins: []*types.Plugin{p1, p2}}
	spec.Body.Set("x", types.Property{
		Get: func(self any) (any, error) { return self.(*instance).x, nil },
		Set: func(self any, value any) error { self.(*instance).x = value; return nil },
	})

	d, err := quietComposer(nil, nil).Compose(spec)
	require.NoError(t, err)

	inst := &instance{}
	require.NoError(t, d.SetAttr(inst, "x", "hey"))
	assert.Equal(t, "HEY", inst.x)

	got, err := d.GetAttr(inst, "x")
	require.NoError(t, err)
	assert.Equal(t, "HEY!", got)

	err = d.DelAttr(inst, "x")
	assert.ErrorIs(t, err, types.ErrAccessorMissing, "endpoint has no deleter")
	assert.Equal(t, []string{"delete Upper"}, inst.trace)
}

func TestCompose_PropertySlotWithoutLayersOrEndpointStaysNil(t *testing.T) {
	p1 := types.NewPlugin("P1", "").Define("x", types.PlumbProperty(
		func(owner *types.Plugin, next types.Getter, self any) (any, error) { return next(self) }, nil, nil))
	spec := types.TypeSpec{Name: "P", Plugins: []*types.Plugin{p1}}
	spec.Body.Set("x", types.Property{Get: func(any) (any, error) { return 1, nil }})

	d, err := quietComposer(nil, nil).Compose(spec)
	require.NoError(t, err)

	p, err := d.Property("x")
	require.NoError(t, err)
	assert.NotNil(t, p.Get)
	assert.Nil(t, p.Set)
	assert.Nil(t, p.Delete)
}

func TestCompose_Docs(t *testing.T) {
	p1, p2 := greetingPlugins()
	silent := types.NewPlugin("Silent", "")

	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{
		Name:    "Hello",
		Doc:     "Says hello.",
		Plugins: []*types.Plugin{p1, silent, p2},
	})
	require.NoError(t, err)

	assert.Equal(t, "Says hello.\nProvides the greeting target.\nAdds a salutation.", d.Doc)
	assert.Equal(t, "Prefixes a salutation.\nReturns the target.", d.DocOf("greet"))
}

func TestCompose_TwiceIsIndependentButEquivalent(t *testing.T) {
	p1, p2 := greetingPlugins()
	spec := types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}}
	c := quietComposer(nil, nil)

	a, err := c.Compose(spec)
	require.NoError(t, err)
	b, err := c.Compose(spec)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID, b.ID)

	ga, err := a.Call(&instance{}, "greet")
	require.NoError(t, err)
	gb, err := b.Call(&instance{}, "greet")
	require.NoError(t, err)
	assert.Equal(t, ga, gb)
}

func TestCompose_Concurrent(t *testing.T) {
	c := quietComposer(capability.NewRegistry(), nil)
	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			p1, p2 := greetingPlugins()
			d, err := c.Compose(types.TypeSpec{Name: fmt.Sprintf("Hello%d", i), Plugins: []*types.Plugin{p1, p2}})
			if err != nil {
				return err
			}
			got, err := d.Call(&instance{}, "greet")
			if err != nil {
				return err
			}
			if got != "Hi, World" {
				return fmt.Errorf("%s: got %v", d.Name, got)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestCompose_CompiledChainIsSafeForConcurrentCalls(t *testing.T) {
	p1, p2 := greetingPlugins()
	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	require.NoError(t, err)

	var g errgroup.Group
	for range 32 {
		g.Go(func() error {
			_, err := d.Call(&instance{}, "greet")
			return err
		})
	}
	require.NoError(t, g.Wait())
}

func TestCompose_CapabilityPropagation(t *testing.T) {
	reg := capability.NewRegistry()
	require.NoError(t, reg.Declare("P1", "Greeter"))
	require.NoError(t, reg.Declare("P2", "Named", "Greeter"))

	p1, p2 := greetingPlugins()
	d, err := quietComposer(reg, nil).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Greeter", "Named"}, d.Capabilities)
	caps, err := reg.ImplementedBy("Hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"Greeter", "Named"}, caps)
}

func TestCompose_WithoutRegistryNoCapabilities(t *testing.T) {
	p1, p2 := greetingPlugins()
	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	require.NoError(t, err)
	assert.Empty(t, d.Capabilities)
}

func TestCompose_FailureLeavesRegistryUntouched(t *testing.T) {
	reg := capability.NewRegistry()
	require.NoError(t, reg.Declare("P1", "Greeter"))

	_, err := quietComposer(reg, nil).Compose(types.TypeSpec{
		Name: "Broken",
		Plugins: []*types.Plugin{
			types.NewPlugin("P1", "").Define("greet", types.PlumbMethod(tracer())),
		},
	})
	require.ErrorIs(t, err, types.ErrMissingEndpoint)

	caps, err := reg.ImplementedBy("Broken")
	require.NoError(t, err)
	assert.Empty(t, caps)
}

type failingRegistry struct{}

func (failingRegistry) ImplementedBy(string) ([]string, error) { return nil, errors.New("registry down") }
func (failingRegistry) Declare(string, ...string) error      { return nil }

func TestCompose_RegistryErrorFailsComposition(t *testing.T) {
	p1, p2 := greetingPlugins()
	_, err := quietComposer(failingRegistry{}, nil).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	assert.ErrorContains(t, err, "registry down")
}

type memoryJournal struct {
	recorded []*types.Descriptor
	err      error
}

func (j *memoryJournal) Record(d *types.Descriptor) error {
	if j.err != nil {
		return j.err
	}
	j.recorded = append(j.recorded, d)
	return nil
}

func TestCompose_Journal(t *testing.T) {
	j := &memoryJournal{}
	p1, p2 := greetingPlugins()
	d, err := quietComposer(nil, j).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	require.NoError(t, err)
	require.Len(t, j.recorded, 1)
	assert.Same(t, d, j.recorded[0])

	_, err = quietComposer(nil, j).Compose(types.TypeSpec{
		Name:    "Broken",
		Plugins: []*types.Plugin{types.NewPlugin("P1", "").Define("greet", types.PlumbMethod(tracer()))},
	})
	require.Error(t, err)
	assert.Len(t, j.recorded, 1, "failed compositions are not journaled")

	j.err = errors.New("disk full")
	_, err = quietComposer(nil, j).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	assert.ErrorContains(t, err, "disk full")
}

func TestCompose_JournalFailureLeavesRegistryUntouched(t *testing.T) {
	reg := capability.NewRegistry()
	require.NoError(t, reg.Declare("P1", "Greeter"))
	j := &memoryJournal{err: errors.New("disk full")}

	p1, p2 := greetingPlugins()
	d, err := quietComposer(reg, j).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	require.ErrorContains(t, err, "disk full")
	assert.Nil(t, d)

	caps, err := reg.ImplementedBy("Hello")
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestCompose_InstalledDescriptorIsSealed(t *testing.T) {
	p1, p2 := greetingPlugins()
	d, err := quietComposer(nil, nil).Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{p1, p2}})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Install("greet", 1, ""), types.ErrDescriptorSealed)
}
