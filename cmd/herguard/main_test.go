package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "help", args: []string{"--help"}, wantStdout: "locate"},
		{name: "version", args: []string{"version"}, wantStdout: "herguard "},
		{name: "unknown command", args: []string{"not-a-command"}, wantCode: 2, wantStderr: "unknown command"},
		{name: "malformed fix", args: []string{"locate", "--set", "north,east"}, wantCode: 2, wantStderr: "invalid location fix"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("XDG_STATE_HOME", t.TempDir())
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())

			var stdout, stderr bytes.Buffer
			code := run(tc.args, &stdout, &stderr)

			require.Equal(t, tc.wantCode, code, "stderr: %s", stderr.String())
			require.Contains(t, stdout.String(), tc.wantStdout)
			require.Contains(t, stderr.String(), tc.wantStderr)
		})
	}
}
