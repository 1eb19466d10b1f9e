// Package cli implements the boardtree command-line interface: inspection
// and maintenance of stored page-tree documents.
// See docs/ARCHITECTURE.md § CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukaforge/boardtree/internal/paths"
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
	backend   string
	jsonMode  bool
}

var flags rootFlags

// configValues holds settings loaded from config.yaml by the root
// PersistentPreRunE so all subcommands can use them.
var configValues struct {
	dataDir   string
	backend   string
	embedTree bool
}

// NewRootCmd creates the top-level "boardtree" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "boardtree",
		Short:   "Inspect and maintain page-tree documents",
		Long:    "Boardtree manages versioned page-tree documents: flat page\nsequences with an embedded branching history tree.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			configDir, err := resolveConfigDir()
			if err != nil {
				return err
			}
			v, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			configValues.dataDir = v.GetString(cfgKeyDataDir)
			configValues.backend = v.GetString(cfgKeyBackend)
			configValues.embedTree = v.GetBool(cfgKeyEmbedTree)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.boardtree-db)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: sqlite or bolt (default: config.yaml)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newPagesCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newDeleteCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUserError)
	}
}

// resolveConfigDir returns the config directory from flag, env, or the
// platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flags.configDir)
}

// resolveDataDir returns the data directory following the precedence
// chain: flag > config.yaml > env > CWD default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flags.dataDir, configValues.dataDir)
}

// exitError prints the error to stderr and exits with the given code.
func exitError(code int, msg string) error {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
	return nil // unreachable
}
