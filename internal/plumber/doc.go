package plumber

import (
	"strings"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

const docSeparator = "\n"

// joinDocs joins the non-empty parts with docSeparator.
func joinDocs(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, docSeparator)
}

// typeDoc is the type's own doc followed by the plugin docs, innermost
// plugin first.
func typeDoc(doc string, plugins []*types.Plugin) string {
	parts := make([]string, 0, len(plugins)+1)
	parts = append(parts, doc)
	for i := len(plugins) - 1; i >= 0; i-- {
		parts = append(parts, plugins[i].Doc)
	}
	return joinDocs(parts...)
}

// methodDoc lists the layer docs outermost first, then the endpoint doc.
func methodDoc(p *pipeline, endpointDoc string) string {
	parts := make([]string, 0, len(p.entries)+1)
	for _, e := range p.entries {
		parts = append(parts, e.doc)
	}
	parts = append(parts, endpointDoc)
	return joinDocs(parts...)
}
