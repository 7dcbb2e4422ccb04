package plumber

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// Composer implements types.Composer. Its collaborators are read-only after
// construction, so one Composer may serve concurrent Compose calls.
type Composer struct {
	registry types.CapabilityRegistry
	journal  types.Journal
	logger   *slog.Logger
}

// NewComposer creates a Composer from config. Nil collaborators disable the
// corresponding step; a nil logger means slog.Default().
func NewComposer(config types.Config) *Composer {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		registry: config.Registry,
		journal:  config.Journal,
		logger:   logger,
	}
}

// grant is a capability propagation deferred until composition succeeds.
type grant struct {
	plugin       string
	capabilities []string
}

// Compose builds the Descriptor for spec. The type's own body is installed
// first, then every plugin is collected in order, then each collected name
// is resolved and compiled. The Descriptor is sealed before it is returned.
// The journal records the Descriptor before capabilities are declared, so a
// journal failure leaves the registry untouched. A failed composition
// returns no Descriptor.
func (c *Composer) Compose(spec types.TypeSpec) (*types.Descriptor, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("type name: %w", types.ErrInvalidName)
	}
	for i, p := range spec.Plugins {
		if p == nil {
			return nil, fmt.Errorf("%s plugin %d: %w", spec.Name, i, types.ErrNilPlugin)
		}
	}

	d := types.NewDescriptor(spec.Name, spec.Base)
	d.ID = newUUID()
	d.Plugins = append([]*types.Plugin(nil), spec.Plugins...)
	d.Doc = typeDoc(spec.Doc, spec.Plugins)

	if err := installBody(d, &spec.Body); err != nil {
		return nil, err
	}

	col := newCollector(d, c.logger)
	var grants []grant
	for _, p := range spec.Plugins {
		if err := col.collect(p); err != nil {
			return nil, err
		}
		caps, err := c.implementedBy(p)
		if err != nil {
			return nil, err
		}
		if len(caps) > 0 {
			grants = append(grants, grant{plugin: p.Name, capabilities: caps})
			d.Capabilities = appendUnique(d.Capabilities, caps...)
		}
	}

	for _, name := range col.order {
		p := col.pipes[name]
		endpoint, err := resolveEndpoint(d, p)
		if err != nil {
			return nil, err
		}
		value, doc := compile(p, endpoint)
		if err := d.Install(name, value, doc); err != nil {
			return nil, err
		}
		c.logger.Debug("pipeline compiled", "type", d.Name, "name", name, "layers", len(p.entries))
	}
	d.Seal()

	if c.journal != nil {
		if err := c.journal.Record(d); err != nil {
			return nil, fmt.Errorf("record %s: %w", d.Name, err)
		}
	}
	for _, g := range grants {
		if err := c.registry.Declare(d.Name, g.capabilities...); err != nil {
			return nil, fmt.Errorf("propagate capabilities of %s to %s: %w", g.plugin, d.Name, err)
		}
	}

	c.logger.Info("type composed", "type", d.Name, "id", d.ID, "plugins", len(d.Plugins), "pipelines", len(col.order))
	return d, nil
}

// installBody copies the type's own definitions onto d.
func installBody(d *types.Descriptor, body *types.Namespace) error {
	for _, m := range body.Members() {
		if decl, ok := m.Value.(*types.Declaration); ok && decl != nil && decl.IsPlumbing() {
			return fmt.Errorf("%s.%s: plumbing declared on the type itself %w", d.Name, m.Name, types.ErrTypeConstraint)
		}
		if err := d.Install(m.Name, types.Unwrap(m.Value), m.Doc); err != nil {
			return err
		}
	}
	return nil
}

// implementedBy asks the registry, if any, which capability sets plugin
// satisfies.
func (c *Composer) implementedBy(plugin *types.Plugin) ([]string, error) {
	if c.registry == nil {
		return nil, nil
	}
	caps, err := c.registry.ImplementedBy(plugin.Name)
	if err != nil {
		return nil, fmt.Errorf("capabilities of %s: %w", plugin.Name, err)
	}
	return caps, nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
