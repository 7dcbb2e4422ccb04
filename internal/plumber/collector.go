// Package plumber implements composition: collecting plugin declarations
// into per-name pipelines, resolving each pipeline's endpoint, and compiling
// the pipeline into a single installable behavior.
package plumber

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// entry is one plumbing layer of a pipeline.
type entry struct {
	owner *types.Plugin
	decl  *types.Declaration
	doc   string
}

// pipeline collects the layers declared for one name, outermost first.
// closed marks that a Default or Extend was seen; no layer may follow it.
type pipeline struct {
	name    string
	entries []entry
	closed  bool
}

// kind returns the declaration kind of the pipeline's layers, or 0 when it
// has none.
func (p *pipeline) kind() types.Kind {
	if len(p.entries) == 0 {
		return 0
	}
	return p.entries[len(p.entries)-1].decl.Kind()
}

// collector walks plugins in order and builds the pipelines for one
// composition. Default and Extend values are installed on target as they
// are seen, so later checks observe them.
type collector struct {
	target    *types.Descriptor
	pipes     map[string]*pipeline
	order     []string
	defaulted map[string]bool
	logger    *slog.Logger
}

func newCollector(target *types.Descriptor, logger *slog.Logger) *collector {
	return &collector{
		target:    target,
		pipes:     make(map[string]*pipeline),
		defaulted: make(map[string]bool),
		logger:    logger,
	}
}

// pipe returns the pipeline for name, creating it on first use.
func (c *collector) pipe(name string) *pipeline {
	p, ok := c.pipes[name]
	if !ok {
		p = &pipeline{name: name}
		c.pipes[name] = p
		c.order = append(c.order, name)
	}
	return p
}

// collect processes every declaration of plugin in member order. Plain
// members are skipped.
func (c *collector) collect(plugin *types.Plugin) error {
	for _, m := range plugin.Members() {
		decl, ok := m.Value.(*types.Declaration)
		if !ok || decl == nil {
			continue
		}
		if err := c.add(plugin, m, decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) add(owner *types.Plugin, m types.Member, decl *types.Declaration) error {
	name := m.Name
	if decl.Closes() {
		c.pipe(name).closed = true
	}
	switch decl.Kind() {
	case types.KindExtend:
		if c.target.HasOwn(name) && !c.defaulted[name] {
			return &types.CollisionError{Name: name, Plugin: owner.Name, Reason: "extend of an attribute the type already defines"}
		}
		if err := c.target.Install(name, decl.Value(), m.Doc); err != nil {
			return err
		}
		delete(c.defaulted, name)
		c.logger.Debug("extend installed", "type", c.target.Name, "plugin", owner.Name, "name", name)

	case types.KindDefault:
		if c.target.HasOwn(name) {
			c.logger.Debug("default ignored", "type", c.target.Name, "plugin", owner.Name, "name", name)
			return nil
		}
		if err := c.target.Install(name, decl.Value(), m.Doc); err != nil {
			return err
		}
		c.defaulted[name] = true
		c.logger.Debug("default installed", "type", c.target.Name, "plugin", owner.Name, "name", name)

	case types.KindPlumbMethod, types.KindPlumbProperty:
		if p, ok := c.pipes[name]; ok && p.closed {
			return &types.CollisionError{Name: name, Plugin: owner.Name, Reason: "plumbing behind a default or extend"}
		}
		if decl.Kind() == types.KindPlumbMethod && decl.Method() == nil {
			return fmt.Errorf("%s.%s: nil plumbing method %w", owner.Name, name, types.ErrTypeConstraint)
		}
		p := c.pipe(name)
		if k := p.kind(); k != 0 && k != decl.Kind() {
			return &types.CollisionError{Name: name, Plugin: owner.Name, Reason: fmt.Sprintf("%s after %s", decl.Kind(), k)}
		}
		p.entries = append(p.entries, entry{owner: owner, decl: decl, doc: m.Doc})

	default:
		return fmt.Errorf("%s.%s: unknown declaration %w", owner.Name, name, types.ErrTypeConstraint)
	}
	return nil
}
