package commands

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/kestrel/internal/output"
	"github.com/simonhull/kestrel/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter kestrel.yml",
	Long: `Init writes a starter configuration with the default thresholds,
dimension weights, layers, and rules spelled out, ready to edit.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	RootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = "kestrel.yml"
	}

	if err := config.WriteStarter(path, initForce); err != nil {
		return err
	}

	output.Success("Created " + path)
	output.Info("Next steps:")
	output.Step("1. Adjust thresholds and layers for your project")
	output.Step("2. Run 'kestrel check <file>' to try it out")
	output.Step("3. Add 'kestrel hook' to .claude/settings.json PreToolUse hooks")
	return nil
}
