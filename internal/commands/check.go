package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/kestrel/internal/output"
	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/gate"
)

var (
	checkProject string
	checkStdin   bool
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Analyze a proposed file write",
	Long: `Check scores the given Python file against existing code in the same
architectural role and validates architecture rules, printing the
analysis report to stdout.

By default the file's current on-disk content is analyzed. With --stdin
the proposed content is read from standard input instead, so you can
gate a write before it happens:

  cat new_service.py | kestrel check app/services/new_service.py --stdin

Exit code is 2 when the write should be blocked, 0 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkProject, "project", "p", ".", "Project root to search for similar code")
	checkCmd.Flags().BoolVar(&checkStdin, "stdin", false, "Read proposed content from stdin instead of the file")
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	var content []byte
	var err error
	if checkStdin {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg, err := config.Load(checkProject, configPath)
	if err != nil {
		return err
	}

	g, err := gate.New(checkProject, cfg)
	if err != nil {
		return err
	}

	verdict := g.Analyze(cmd.Context(), path, content)

	if report := verdict.Report(); report != "" {
		fmt.Println(report)
	}

	switch verdict.Decision {
	case gate.Block:
		output.Error("Write blocked")
	case gate.Warn:
		output.Warn("Review recommended before writing")
	default:
		output.Verbose(fmt.Sprintf("Allowed (role %s, %d similar, %d violations)",
			verdict.Role, len(verdict.Matches), len(verdict.Violations)))
	}

	if code := verdict.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}
