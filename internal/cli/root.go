// Package cli implements the plumber command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/plumbing/internal/paths"
	"github.com/mesh-intelligence/plumbing/internal/sqlite"
	"github.com/mesh-intelligence/plumbing/pkg/plumbing"
	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries the state shared by one invocation of the command tree.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "plumber" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "plumber",
		Short: "Compose behavior chains from plugin manifests",
		Long: "Plumber composes types from ordered plugins, wiring each plumbed\n" +
			"method or property into a chain that ends at an endpoint.",
		Version:           plumbing.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(a.newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newCheckCmd())
	root.AddCommand(a.newCapabilitiesCmd())
	root.AddCommand(a.newHistoryCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// setup resolves the config directory, loads config.yaml and builds the
// logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return userError(err)
	}

	a.configDir = configDir
	a.config = cfg
	a.logger = logger
	return nil
}

// resolveDataDir returns the data directory following the precedence:
// --data-dir flag > config.yaml data_dir > PLUMBER_DATA_DIR env > default.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
}

// attachStore resolves the data directory and attaches the configured
// backend. The caller must Detach the returned backend.
func (a *app) attachStore() (*sqlite.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	store := sqlite.NewBackend()
	cfg := types.StoreConfig{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	a.logger.Debug("store attached", "backend", cfg.Backend, "data_dir", dataDir)
	return store, nil
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input or a failed check.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// sysError marks err as an environment or storage failure.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}
