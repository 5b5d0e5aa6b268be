package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bitcat/internal/version"
)

// errFailed is returned after diagnostics have been printed; cobra stays
// silent and main exits with status 1.
var errFailed = errors.New("catalog failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bitcat",
		Short: "Bit-flag catalog compiler",
		Long: `bitcat resolves TOML catalogs of named bit flags into checked values
and generates typed Go flag sets from them`,
		Version:           version.Version,
		SilenceErrors:     true,
		PersistentPreRunE: setupGlobals,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = loggerFrom(cmd).Sync()
		},
	}

	// Добавляем команды
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newGenCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to a rotating file instead of stderr")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile of check to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile of check to this file")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
