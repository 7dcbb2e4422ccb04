package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize plumber storage",
		Long:  "Create the configuration file and data directory, then initialize the capability registry and composition journal.",
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	configPath := filepath.Join(a.configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, dataDir)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}
	if written {
		a.logger.Info("config written", "path", configPath)
	}

	// Attach then Detach creates the database and applies the schema.
	store, err := a.attachStore()
	if err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := store.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"config_dir": a.configDir,
			"data_dir":   dataDir,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Plumbing initialized in %s\n", dataDir)
	return nil
}
