package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/kestrel"
	"github.com/simonhull/kestrel/internal/output"
	"github.com/simonhull/kestrel/pkg/logger"
)

var (
	verbose    bool
	configPath string
)

// RootCmd is the root command for Kestrel
var RootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Kestrel - Pre-Write Gate for Python Codebases",
	Long: `Kestrel inspects a proposed file write before it lands: it scores the
content's structural similarity against existing code in the same
architectural role and validates layering, singleton placement, and
configuration-access rules, then blocks, warns, or allows the write.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.SetVerbose(verbose)
		if verbose {
			logger.Default().SetLevel(logger.LevelDebug)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed analysis information")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to kestrel.yml (default: kestrel.yml in the project root)")

	// Add version command
	RootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Kestrel v%s\n", kestrel.Version)
		},
	})
}
