package app

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/fsm"
	"github.com/rbright/herguard/internal/permission"
	"github.com/stretchr/testify/require"
)

func TestToggleOwnerFailsWhenMicrophoneDenied(t *testing.T) {
	env := newRunnerEnv(t)
	t.Setenv("PULSE_SERVER", missingPulseServer)

	code, _, stderr := env.run(t, "toggle")
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "permission denied")

	_, err := os.Stat(env.socketPath)
	require.ErrorIs(t, err, os.ErrNotExist, "owner removes its socket on exit")
}

func TestBuildController(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfg := config.Default()
	cfg.Indicator.Enable = false
	cfg.Indicator.SoundEnable = false

	controller, notifier, err := buildController(cfg, permission.New(cfg), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NotNil(t, notifier)
	require.Equal(t, fsm.StateIdle, controller.State())

	cfg.Location.Source = "satellite"
	_, _, err = buildController(cfg, permission.New(cfg), slog.New(slog.DiscardHandler))
	require.Error(t, err)
}

func TestRelaysFor(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	require.Nil(t, relaysFor(config.AlertConfig{}, logger))
	require.Empty(t, logs.String())

	bad := config.AlertConfig{RelayURLs: []string{"definitely-not-a-service://x"}, RelayTimeoutMS: 500}
	require.Nil(t, relaysFor(bad, logger))
	require.Contains(t, logs.String(), "alert relays disabled")

	logs.Reset()
	good := config.AlertConfig{RelayURLs: []string{"logger://"}, RelayTimeoutMS: 1000}
	require.Len(t, relaysFor(good, logger), 1)
	require.NotContains(t, logs.String(), "disabled")
}
