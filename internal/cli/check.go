package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/plumbing/internal/capability"
	"github.com/mesh-intelligence/plumbing/internal/manifest"
	"github.com/mesh-intelligence/plumbing/internal/plumber"
	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// checkOptions holds the flags of the check command.
type checkOptions struct {
	record bool
	dump   bool
}

// typeReport is the check outcome of one manifest type.
type typeReport struct {
	Type          string         `json:"type"`
	CompositionID string         `json:"composition_id,omitempty"`
	Doc           string         `json:"doc,omitempty"`
	Capabilities  []string       `json:"capabilities,omitempty"`
	Members       []memberReport `json:"members,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// memberReport describes one installed name and the path a call takes.
type memberReport struct {
	Name  string `json:"name"`
	Shape string `json:"shape"`
	Doc   string `json:"doc,omitempty"`
	Trace string `json:"trace"`
}

// Status colors.
var (
	colorOK   = lipgloss.Color("#10B981")
	colorFail = lipgloss.Color("#EF4444")
)

func (a *app) newCheckCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check <manifest>",
		Short: "Compose every type in a manifest and report the chains",
		Long: `Check loads a YAML composition manifest, builds stub plugins from it and
composes every declared type. For each installed name it prints the shape
and the path a call takes from the outermost layer to the endpoint.

A collision, missing endpoint or type constraint violation fails the type
and the command exits non-zero.

Example:
  plumber check greeting.yaml
  plumber check --record greeting.yaml
  plumber --json check greeting.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.record, "record", false, "store capabilities and compositions in the data directory")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the parsed manifest before composing")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, path string, opts checkOptions) error {
	m, err := manifest.Load(path)
	if err != nil {
		return userError(err)
	}
	out := cmd.OutOrStdout()
	if opts.dump {
		fmt.Fprint(out, spew.Sdump(m))
	}

	cfg := types.Config{
		Registry: capability.NewRegistry(),
		Logger:   a.logger,
	}
	if opts.record {
		store, err := a.attachStore()
		if err != nil {
			return sysError(err)
		}
		defer store.Detach()
		cfg.Registry = store
		cfg.Journal = store
	}
	if err := m.DeclareCapabilities(cfg.Registry); err != nil {
		return sysError(err)
	}

	results := m.Compose(plumber.NewComposer(cfg))
	reports := make([]typeReport, 0, len(results))
	failed := 0
	for _, r := range results {
		report := newTypeReport(r)
		if report.Error != "" {
			failed++
		}
		reports = append(reports, report)
	}

	if a.flags.jsonMode {
		if err := writeJSON(out, reports); err != nil {
			return sysError(err)
		}
	} else {
		printReports(out, reports)
	}

	if failed > 0 {
		return userError(fmt.Errorf("%d of %d types failed to compose", failed, len(results)))
	}
	return nil
}

func newTypeReport(r manifest.Result) typeReport {
	report := typeReport{Type: r.Type}
	if r.Err != nil {
		report.Error = r.Err.Error()
		return report
	}

	d := r.Descriptor
	report.CompositionID = d.ID
	report.Doc = d.Doc
	report.Capabilities = d.Capabilities
	for _, name := range d.Names() {
		trace, err := manifest.Trace(d, name)
		if err != nil {
			trace = "error: " + err.Error()
		}
		report.Members = append(report.Members, memberReport{
			Name:  name,
			Shape: manifest.Shape(d, name),
			Doc:   d.DocOf(name),
			Trace: trace,
		})
	}
	return report
}

func printReports(w io.Writer, reports []typeReport) {
	renderer := lipgloss.NewRenderer(w)
	ok := renderer.NewStyle().Bold(true).Foreground(colorOK)
	fail := renderer.NewStyle().Bold(true).Foreground(colorFail)

	for _, r := range reports {
		if r.Error != "" {
			fmt.Fprintf(w, "%s %s: %s\n", fail.Render("FAIL"), r.Type, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s   %s %s\n", ok.Render("ok"), r.Type, r.CompositionID)
		if len(r.Capabilities) > 0 {
			fmt.Fprintf(w, "     capabilities: %v\n", r.Capabilities)
		}
		for _, m := range r.Members {
			fmt.Fprintf(w, "     %-12s %-8s %s\n", m.Name, m.Shape, m.Trace)
		}
	}
}
