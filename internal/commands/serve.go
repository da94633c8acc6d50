package commands

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/kestrel/internal/mcpserver"
	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/logger"
)

var serveProject string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis tools over MCP on stdio",
	Long: `Serve exposes precheck_write and validate_rules as MCP tools on
stdio, so agent frameworks can gate writes without shelling out to the
CLI for every file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveProject, "project", "p", ".", "Project root to search for similar code")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveProject, configPath)
	if err != nil {
		return err
	}

	srv, err := mcpserver.New(serveProject, cfg)
	if err != nil {
		return err
	}

	logger.Default().Info("kestrel MCP server listening on stdio", logger.F("project", serveProject))
	return srv.Serve()
}
