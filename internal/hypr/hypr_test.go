package hypr

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeHyprctl puts a hyprctl script first on PATH and returns the file its
// arguments are appended to, one invocation per line.
func fakeHyprctl(t *testing.T, exitCode int, stderr string) string {
	t.Helper()

	dir := t.TempDir()
	log := filepath.Join(dir, "calls.log")
	script := "#!/usr/bin/env bash\n" +
		"printf '%s\\n' \"$*\" >> " + log + "\n" +
		"printf '%s' '" + stderr + "' >&2\n" +
		"exit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hyprctl"), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return log
}

func calls(t *testing.T, log string) []string {
	t.Helper()
	data, err := os.ReadFile(log)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNotifyAndDismissArguments(t *testing.T) {
	log := fakeHyprctl(t, 0, "")

	require.NoError(t, Notify(context.Background(), Notice{Icon: IconInfo, TimeoutMS: 3500, Text: "Detected Emotion: Fear"}))
	require.NoError(t, Notify(context.Background(), Notice{Icon: IconOK, TimeoutMS: 2000, Color: "rgb(a6e3a1)", Text: "Emergency message sent!"}))
	require.NoError(t, Dismiss(context.Background()))

	require.Equal(t, []string{
		"--quiet dispatch notify 1 3500 rgb(89b4fa) Detected Emotion: Fear",
		"--quiet dispatch notify 5 2000 rgb(a6e3a1) Emergency message sent!",
		"--quiet dispatch dismissnotify",
	}, calls(t, log))
}

func TestDispatchFailureCarriesOutput(t *testing.T) {
	fakeHyprctl(t, 1, "no instance found")

	err := Notify(context.Background(), Notice{Icon: IconError, TimeoutMS: 1000, Text: "Recording…"})
	require.ErrorContains(t, err, "hyprctl dispatch notify")
	require.ErrorContains(t, err, "no instance found")
}

func TestDispatchFailureWithoutOutput(t *testing.T) {
	fakeHyprctl(t, 2, "")

	err := Dismiss(context.Background())
	require.ErrorContains(t, err, "hyprctl dispatch dismissnotify")
	require.NotContains(t, err.Error(), "()")
}

func TestNoticeArgsDefaultsColor(t *testing.T) {
	require.Equal(t, []string{"3", "0", fallbackColor, "x"}, Notice{Icon: IconError, Text: "x"}.args())
	require.Equal(t, []string{"0", "10", "rgb(000000)", ""}, Notice{TimeoutMS: 10, Color: " rgb(000000) "}.args())
}
