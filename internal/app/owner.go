package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rbright/herguard/internal/alert"
	"github.com/rbright/herguard/internal/audio"
	"github.com/rbright/herguard/internal/backend"
	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/indicator"
	"github.com/rbright/herguard/internal/ipc"
	"github.com/rbright/herguard/internal/location"
	"github.com/rbright/herguard/internal/permission"
	"github.com/rbright/herguard/internal/pipeline"
	"github.com/rbright/herguard/internal/session"
)

const (
	acquireProbeTimeout = 180 * time.Millisecond
	acquireRetries      = 8
)

// commandToggle forwards to a running owner, or becomes the owner and runs
// one full cycle.
func (r Runner) commandToggle(ctx context.Context, inv invocation) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		r.errorf("%v", err)
		return exitError
	}

	if resp, handled, err := tryForward(ctx, socketPath, ipc.CommandToggle); handled {
		return r.reportForwarded(resp, err)
	}

	listener, err := ipc.Acquire(ctx, socketPath, acquireProbeTimeout, acquireRetries, nil)
	switch {
	case errors.Is(err, ipc.ErrAlreadyRunning):
		// Another invocation won the race; hand it the toggle instead.
		resp, _, err := tryForward(ctx, socketPath, ipc.CommandToggle)
		return r.reportForwarded(resp, err)
	case err != nil:
		r.errorf("%v", err)
		return exitError
	}
	// Close unlinks the socket once. The path itself may belong to a successor
	// owner by the time this runs.
	defer func() { _ = listener.Close() }()

	gate := permission.New(inv.cfg)
	logPermissionReport(inv.logger, gate.Check(ctx))

	controller, notifier, err := buildController(inv.cfg, gate, inv.logger)
	if err != nil {
		r.errorf("%v", err)
		return exitError
	}

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()
	served := make(chan error, 1)
	go func() { served <- ipc.Serve(serveCtx, listener, controller) }()

	result := controller.Run(ctx)
	stopServing()
	notifier.Wait()
	if err := <-served; err != nil {
		r.errorf("ipc server failed: %v", err)
		return exitError
	}

	logSessionResult(inv.logger, result)
	return r.reportResult(result)
}

// buildController assembles the owner-side cycle from config.
func buildController(cfg config.Config, gate session.Gate, logger *slog.Logger) (*session.Controller, *indicator.Notifier, error) {
	provider, err := location.New(cfg.Location)
	if err != nil {
		return nil, nil, err
	}

	client := backend.New(cfg.Server.BaseURL, cfg.Server.Timeout())
	dispatcher := alert.NewDispatcher(provider, client, logger, relaysFor(cfg.Alert, logger)...)
	recorder := audio.NewRecorder(cfg.Recording.Path, cfg.Audio.Input, cfg.Audio.Fallback, logger)
	notifier := indicator.NewNotifier(cfg.Indicator, logger)

	controller := session.NewController(logger, gate, pipeline.NewAnalyzer(recorder, client, logger), dispatcher, notifier)
	return controller, notifier, nil
}

// relaysFor builds the optional shoutrrr relay. A bad URL disables relays
// without failing the cycle.
func relaysFor(cfg config.AlertConfig, logger *slog.Logger) []alert.Relay {
	if len(cfg.RelayURLs) == 0 {
		return nil
	}
	relay, err := alert.NewShoutrrrRelay(cfg.RelayURLs, time.Duration(cfg.RelayTimeoutMS)*time.Millisecond)
	if err != nil {
		logger.Warn("alert relays disabled", "error", err.Error())
		return nil
	}
	logger.Debug("alert relays configured", "count", relay.Count())
	return []alert.Relay{relay}
}
