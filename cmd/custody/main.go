// Command custody serves the item custody ledger over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configFile is set by the --config flag.
var configFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "custody",
		Short: "Item custody ledger",
		Long: `custody records who holds which item. Items get a unique code, and
ownership moves only when the receiver accepts a proposed transfer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: ./custody.yaml)")
	pf.StringP("db", "d", "", "SQLite database path (default: custody.sqlite3)")
	pf.StringP("log", "l", "", "log file path (JSON lines; default: stdout/stderr only)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default: info)")

	root.AddCommand(newInitCmd(), newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "custody %s\n", version)
		},
	}
}
