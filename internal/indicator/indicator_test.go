package indicator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/herguard/internal/config"
	"github.com/stretchr/testify/require"
)

func quietConfig() config.IndicatorConfig {
	cfg := config.Default().Indicator
	cfg.Enable = true
	cfg.SoundEnable = false
	return cfg
}

func TestHyprNoticesForAlertCycle(t *testing.T) {
	hyprctl := recordCalls(t, "hyprctl", "")

	n := NewNotifier(quietConfig(), nil)
	ctx := context.Background()
	n.ShowRecording(ctx)
	n.ShowUploading(ctx)
	n.ShowEmotion(ctx, "Fear")
	n.ShowAlertSent(ctx)
	n.Hide(ctx)

	require.Equal(t, []string{
		"--quiet dispatch notify 1 300000 rgb(89b4fa) Recording…",
		"--quiet dispatch dismissnotify",
		"--quiet dispatch notify 1 300000 rgb(cba6f7) Analyzing…",
		"--quiet dispatch dismissnotify",
		"--quiet dispatch notify 1 3500 rgb(f9e2af) Detected Emotion: Fear",
		"--quiet dispatch dismissnotify",
		"--quiet dispatch notify 5 3500 rgb(a6e3a1) Emergency message sent!",
		"--quiet dispatch dismissnotify",
	}, hyprctl())
}

func TestShowEmotionWithoutLabelSaysUnknown(t *testing.T) {
	hyprctl := recordCalls(t, "hyprctl", "")

	cfg := quietConfig()
	cfg.NoticeTimeoutMS = 0
	NewNotifier(cfg, nil).ShowEmotion(context.Background(), "")

	calls := hyprctl()
	require.Equal(t, "--quiet dispatch notify 1 3500 rgb(f9e2af) Detected Emotion: Unknown", calls[len(calls)-1])
}

func TestShowError(t *testing.T) {
	tests := []struct {
		name      string
		timeoutMS int
		text      string
		want      string
	}{
		{
			name: "explicit text with default timeout",
			text: "Failed to send emergency message: boom",
			want: "--quiet dispatch notify 3 1200 rgb(f38ba8) Failed to send emergency message: boom",
		},
		{
			name:      "generic text",
			timeoutMS: 1600,
			want:      "--quiet dispatch notify 3 1600 rgb(f38ba8) Error: classification failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hyprctl := recordCalls(t, "hyprctl", "")

			cfg := quietConfig()
			cfg.ErrorTimeoutMS = tc.timeoutMS
			NewNotifier(cfg, nil).ShowError(context.Background(), tc.text)

			require.Equal(t, []string{"--quiet dispatch dismissnotify", tc.want}, hyprctl())
		})
	}
}

func TestDisabledNotifierStaysSilent(t *testing.T) {
	log := filepath.Join(t.TempDir(), "unused.log")
	installStub(t, "hyprctl", "printf '%s\\n' \"$*\" >> "+log)

	cfg := quietConfig()
	cfg.Enable = false

	n := NewNotifier(cfg, nil)
	ctx := context.Background()
	n.ShowRecording(ctx)
	n.ShowUploading(ctx)
	n.ShowEmotion(ctx, "Angry")
	n.ShowAlertSent(ctx)
	n.ShowError(ctx, "ignored")
	n.Hide(ctx)
	n.CueAlert(ctx)
	n.Wait()

	_, err := os.Stat(log)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHyprFailureIsNotFatal(t *testing.T) {
	installStub(t, "hyprctl", "exit 1")

	n := NewNotifier(quietConfig(), nil)
	require.NotPanics(t, func() {
		n.ShowRecording(context.Background())
		n.ShowEmotion(context.Background(), "Fear")
		n.Hide(context.Background())
	})
}

func TestDesktopNoticesReplaceByID(t *testing.T) {
	busctl := recordCalls(t, "busctl", `[[ "$*" == *" Notify "* ]] && echo 'u 42'`)

	cfg := quietConfig()
	cfg.Backend = config.IndicatorBackendDesktop

	n := NewNotifier(cfg, nil)
	n.ShowRecording(context.Background())
	n.ShowAlertSent(context.Background())
	n.Hide(context.Background())

	calls := busctl()
	require.Len(t, calls, 3)
	require.Contains(t, calls[0], "Notify susssasa{sv}i herguard 0 dialog-warning Recording…  0 1 urgency y 1 300000")
	require.Contains(t, calls[1], "Notify susssasa{sv}i herguard 42 dialog-warning Emergency message sent!  0 1 urgency y 2 3500")
	require.Contains(t, calls[2], "CloseNotification u 42")
}

func TestDesktopDismissWithoutNotificationIsNoop(t *testing.T) {
	installStub(t, "busctl", "exit 1")

	cfg := quietConfig()
	cfg.Backend = config.IndicatorBackendDesktop
	require.NoError(t, NewNotifier(cfg, nil).dismissDesktop(context.Background()))
}

func TestParseNotificationID(t *testing.T) {
	id, err := parseNotificationID("u 17\n")
	require.NoError(t, err)
	require.Equal(t, uint32(17), id)

	_, err = parseNotificationID("s hello")
	require.Error(t, err)

	_, err = parseNotificationID("u notanumber")
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	require.Equal(t, 7, positiveOr(7, 1))
	require.Equal(t, 1, positiveOr(-3, 1))
	require.Equal(t, "app", orDefault("  app ", "x"))
	require.Equal(t, "x", orDefault(" ", "x"))
}

// recordCalls installs a stub named bin that logs its arguments and then
// runs extra. The returned func reads back one line per invocation.
func recordCalls(t *testing.T, bin, extra string) func() []string {
	t.Helper()

	log := filepath.Join(t.TempDir(), bin+".log")
	installStub(t, bin, "printf '%s\\n' \"$*\" >> "+log+"\n"+extra+"\nexit 0")

	return func() []string {
		data, err := os.ReadFile(log)
		require.NoError(t, err)
		return strings.Split(strings.TrimSpace(string(data)), "\n")
	}
}

func installStub(t *testing.T, name string, body string) {
	t.Helper()

	dir := t.TempDir()
	script := "#!/usr/bin/env bash\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
