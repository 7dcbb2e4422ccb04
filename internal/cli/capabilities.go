package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newCapabilitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capabilities [subject]",
		Short: "List recorded capabilities",
		Long: `Capabilities lists the capability sets stored in the data directory.
Without a subject it lists every subject with its capabilities.

Example:
  plumber capabilities
  plumber capabilities Hello
  plumber capabilities declare Salute Greeter Polite`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runCapabilities,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "declare <subject> <capability>...",
		Short: "Declare capabilities for a subject",
		Args:  cobra.MinimumNArgs(2),
		RunE:  a.runDeclare,
	})
	return cmd
}

func (a *app) runCapabilities(cmd *cobra.Command, args []string) error {
	store, err := a.attachStore()
	if err != nil {
		return sysError(err)
	}
	defer store.Detach()

	subjects := args
	if len(subjects) == 0 {
		if subjects, err = store.Subjects(); err != nil {
			return sysError(err)
		}
	}

	listing := make(map[string][]string, len(subjects))
	for _, subject := range subjects {
		caps, err := store.ImplementedBy(subject)
		if err != nil {
			return sysError(err)
		}
		listing[subject] = caps
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), listing)
	}
	for _, subject := range subjects {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", subject, strings.Join(listing[subject], ", "))
	}
	return nil
}

func (a *app) runDeclare(cmd *cobra.Command, args []string) error {
	store, err := a.attachStore()
	if err != nil {
		return sysError(err)
	}
	defer store.Detach()

	if err := store.Declare(args[0], args[1:]...); err != nil {
		return userError(err)
	}
	a.logger.Info("capabilities declared", "subject", args[0], "capabilities", args[1:])
	return nil
}
