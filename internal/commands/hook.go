package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/gate"
)

// hookInput is the PreToolUse payload Claude Code pipes to hooks.
type hookInput struct {
	ToolName  string `json:"tool_name"`
	ToolInput struct {
		FilePath  string `json:"file_path"`
		Content   string `json:"content"`
		NewString string `json:"new_string"`
	} `json:"tool_input"`
	Cwd string `json:"cwd"`
}

type hookOutput struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

type hookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	DisplayText              string `json:"displayText,omitempty"`
}

// Paths the hook never analyzes, regardless of config. Substring match
// against the slash-normalized path.
var hookExcludes = []string{
	"/venv/",
	"/env/",
	"/.venv/",
	"/__pycache__/",
	"/site-packages/",
	"/.claude/hooks/",
	"/migrations/",
	"/test_",
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run as a Claude Code PreToolUse hook",
	Long: `Hook reads a PreToolUse event from stdin, analyzes the pending Write or
Edit, and answers on stdout. A blocked write exits 2 with a
permissionDecision of "ask"; a warning exits 0 with displayText; a clean
write exits 0 silently. Non-Python files and excluded paths pass through
untouched.

Wire it up in .claude/settings.json:

  {"hooks": {"PreToolUse": [{"matcher": "Write|Edit",
    "hooks": [{"type": "command", "command": "kestrel hook"}]}]}}`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func init() {
	RootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	var in hookInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		return fmt.Errorf("decoding hook input: %w", err)
	}

	path, content, ok := hookTarget(in)
	if !ok {
		return nil
	}

	root := in.Cwd
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		root = wd
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}

	g, err := gate.New(root, cfg)
	if err != nil {
		return err
	}

	verdict := g.Analyze(cmd.Context(), path, []byte(content))

	report := verdict.Report()
	if report == "" {
		return nil
	}

	out := hookOutput{hookSpecificOutput{HookEventName: "PreToolUse"}}
	if verdict.Decision == gate.Block {
		out.HookSpecificOutput.PermissionDecision = "ask"
		out.HookSpecificOutput.PermissionDecisionReason = report
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			return err
		}
		os.Exit(verdict.ExitCode())
	}

	out.HookSpecificOutput.DisplayText = report
	return json.NewEncoder(os.Stdout).Encode(out)
}

// hookTarget extracts the path and proposed content from the event,
// reporting ok=false when the event is not a Python write worth gating.
func hookTarget(in hookInput) (path, content string, ok bool) {
	if in.ToolName != "Write" && in.ToolName != "Edit" {
		return "", "", false
	}

	path = in.ToolInput.FilePath
	if !strings.HasSuffix(path, ".py") {
		return "", "", false
	}

	if excludedFromHook(path) {
		return "", "", false
	}

	content = in.ToolInput.Content
	if content == "" {
		content = in.ToolInput.NewString
	}
	return path, content, true
}

func excludedFromHook(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, pattern := range hookExcludes {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}
