package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command against a throwaway workspace
// with no API key, so every code path under test is deterministic and
// offline.
func runCommand(t *testing.T, workspace string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--workspace", workspace}, args...))

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_ShowsHelpWithoutArgs(t *testing.T) {
	out, err := runCommand(t, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "hive runs a hierarchical team")
	assert.Contains(t, out, "goal")
	assert.Contains(t, out, "serve")
}

func TestRootCmd_InvalidOutputFormat(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "-o", "xml", "goal", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "full info",
			info: BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-08-30"},
			want: "1.2.3 (commit: abc1234, built: 2026-08-30)",
		},
		{
			name: "empty info falls back",
			info: BuildInfo{},
			want: "dev (commit: none, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, formatVersion(tt.info))
		})
	}
}
