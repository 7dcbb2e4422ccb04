package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// historyOptions holds the flags of the history command.
type historyOptions struct {
	export string
	load   string
}

func (a *app) newHistoryCmd() *cobra.Command {
	var opts historyOptions
	cmd := &cobra.Command{
		Use:   "history [type]",
		Short: "List recorded compositions",
		Long: `History lists the compositions recorded by check --record, oldest first.
A type name restricts the listing to that type.

The journal can be moved between data directories as JSON lines:
  plumber history --export journal.jsonl
  plumber history --import journal.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.export, "export", "", "write the journal to a JSON lines file")
	cmd.Flags().StringVar(&opts.load, "import", "", "add compositions from a JSON lines file")
	cmd.MarkFlagsMutuallyExclusive("export", "import")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, args []string, opts historyOptions) error {
	store, err := a.attachStore()
	if err != nil {
		return sysError(err)
	}
	defer store.Detach()

	switch {
	case opts.export != "":
		n, err := store.ExportJournal(opts.export)
		if err != nil {
			return sysError(err)
		}
		a.logger.Info("journal exported", "path", opts.export, "records", n)
		return nil
	case opts.load != "":
		n, err := store.ImportJournal(opts.load)
		if err != nil {
			return userError(err)
		}
		a.logger.Info("journal imported", "path", opts.load, "records", n)
		return nil
	}

	typeName := ""
	if len(args) == 1 {
		typeName = args[0]
	}
	records, err := store.Compositions(typeName)
	if err != nil {
		return sysError(err)
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	for _, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  [%s]\n",
			rec.CreatedAt.Format(time.RFC3339), rec.CompositionID, rec.TypeName, strings.Join(rec.Plugins, ", "))
	}
	return nil
}
