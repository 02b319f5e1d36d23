package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/idlbind/logger"
	"github.com/teranos/idlbind/version"
)

var (
	verbosity int
	jsonLogs  bool
)

var rootCmd = &cobra.Command{
	Use:   "idlbind",
	Short: "Generate runtime binding wrappers from IDL definitions",
	Long: `idlbind converts IDL files (interfaces, dictionaries, typedefs) into
generated binding source files that wrap hand-written implementation classes.

It merges partial definitions and implements/includes relationships across
all input files and contributing modules into one resolved registry before
any output is generated, so declaration order never matters.

Examples:
  idlbind generate idl/ --impl impl/ --out generated/
  idlbind generate a.idl b.idl --out generated/ --relaxed
  idlbind generate --config idlbind.toml --watch`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().String())
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
