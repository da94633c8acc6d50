package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInput(t *testing.T, payload string) hookInput {
	t.Helper()
	var in hookInput
	require.NoError(t, json.Unmarshal([]byte(payload), &in))
	return in
}

func TestHookTargetWritePayload(t *testing.T) {
	in := decodeInput(t, `{
		"tool_name": "Write",
		"tool_input": {
			"file_path": "app/services/order_service.py",
			"content": "class OrderService:\n    pass\n"
		},
		"cwd": "/work/shop"
	}`)

	path, content, ok := hookTarget(in)
	require.True(t, ok)
	assert.Equal(t, "app/services/order_service.py", path)
	assert.Equal(t, "class OrderService:\n    pass\n", content)
	assert.Equal(t, "/work/shop", in.Cwd)
}

func TestHookTargetEditFallsBackToNewString(t *testing.T) {
	in := decodeInput(t, `{
		"tool_name": "Edit",
		"tool_input": {
			"file_path": "app/models/user.py",
			"new_string": "class User:\n    pass\n"
		}
	}`)

	path, content, ok := hookTarget(in)
	require.True(t, ok)
	assert.Equal(t, "app/models/user.py", path)
	assert.Equal(t, "class User:\n    pass\n", content)
}

func TestHookTargetIgnoresOtherTools(t *testing.T) {
	in := hookInput{ToolName: "Bash"}
	in.ToolInput.FilePath = "app/services/order_service.py"

	_, _, ok := hookTarget(in)
	assert.False(t, ok)
}

func TestHookTargetIgnoresNonPython(t *testing.T) {
	in := hookInput{ToolName: "Write"}
	in.ToolInput.FilePath = "README.md"
	in.ToolInput.Content = "# readme"

	_, _, ok := hookTarget(in)
	assert.False(t, ok)
}

func TestHookTargetIgnoresExcludedPaths(t *testing.T) {
	in := hookInput{ToolName: "Write"}
	in.ToolInput.FilePath = "/work/shop/venv/lib/site.py"
	in.ToolInput.Content = "x = 1"

	_, _, ok := hookTarget(in)
	assert.False(t, ok)
}

func TestExcludedFromHook(t *testing.T) {
	tests := []struct {
		path     string
		excluded bool
	}{
		{"/work/venv/lib/thing.py", true},
		{"/work/env/lib/thing.py", true},
		{"/work/.venv/lib/thing.py", true},
		{"/work/app/__pycache__/mod.py", true},
		{"/usr/lib/python3/site-packages/yaml/loader.py", true},
		{"/work/.claude/hooks/pre_write.py", true},
		{"/work/app/migrations/0001_initial.py", true},
		{"/work/tests/test_orders.py", true},
		{`C:\work\venv\lib\thing.py`, true},
		{"/work/app/services/order_service.py", false},
		{"/work/app/environments.py", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.excluded, excludedFromHook(tt.path), tt.path)
	}
}

func TestHookOutputAskShape(t *testing.T) {
	out := hookOutput{hookSpecificOutput{
		HookEventName:            "PreToolUse",
		PermissionDecision:       "ask",
		PermissionDecisionReason: "duplicate",
	}}

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"hookSpecificOutput":{"hookEventName":"PreToolUse","permissionDecision":"ask","permissionDecisionReason":"duplicate"}}`,
		string(raw))
}

func TestHookOutputDisplayTextShape(t *testing.T) {
	out := hookOutput{hookSpecificOutput{
		HookEventName: "PreToolUse",
		DisplayText:   "heads up",
	}}

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"hookSpecificOutput":{"hookEventName":"PreToolUse","displayText":"heads up"}}`,
		string(raw))
}
