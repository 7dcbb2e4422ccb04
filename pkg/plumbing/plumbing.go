// Package plumbing is the public entry point of the composition engine.
// It exposes the Composer factory while keeping the implementation internal.
//
// Example:
//
//	logging := types.NewPlugin("Logging", "Logs every call.").
//	    Define("Run", types.PlumbMethod(func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
//	        slog.Info("run", "plugin", owner.Name)
//	        return next(self, args...)
//	    }))
//
//	spec := types.TypeSpec{Name: "Job", Plugins: []*types.Plugin{logging}}
//	spec.Body.Set("Run", types.Method(run))
//
//	job, err := plumbing.Compose(spec)
//	if err != nil {
//	    return err
//	}
//	out, err := job.Call(instance, "Run")
package plumbing

import (
	"github.com/mesh-intelligence/plumbing/internal/capability"
	"github.com/mesh-intelligence/plumbing/internal/plumber"
	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// Version is the release version of the module.
const Version = "0.3.0"

// NewComposer creates a Composer with the given collaborators.
func NewComposer(config types.Config) types.Composer {
	return plumber.NewComposer(config)
}

// Compose composes spec with no capability registry and no journal.
func Compose(spec types.TypeSpec) (*types.Descriptor, error) {
	return plumber.NewComposer(types.Config{}).Compose(spec)
}

// NewRegistry returns an empty in-memory capability registry.
func NewRegistry() types.CapabilityRegistry {
	return capability.NewRegistry()
}
