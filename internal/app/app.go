// Package app wires parsed CLI commands to the herguard runtime.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/herguard/internal/audio"
	"github.com/rbright/herguard/internal/cli"
	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/ipc"
	"github.com/rbright/herguard/internal/logging"
	"github.com/rbright/herguard/internal/permission"
	"github.com/rbright/herguard/internal/version"
)

const binaryName = "herguard"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Runner executes one CLI invocation. Logger overrides the file logger.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// invocation is what every config-backed command receives.
type invocation struct {
	cfg    config.Config
	logger *slog.Logger
	parsed cli.Parsed
}

type handler func(Runner, context.Context, invocation) int

var handlers = map[cli.Command]handler{
	cli.CommandToggle:  Runner.commandToggle,
	cli.CommandStop:    forwarding(ipc.CommandStop),
	cli.CommandCancel:  forwarding(ipc.CommandCancel),
	cli.CommandStatus:  Runner.commandStatus,
	cli.CommandDevices: Runner.commandDevices,
	cli.CommandLocate:  Runner.commandLocate,
	cli.CommandDoctor:  Runner.commandDoctor,
}

// Execute runs args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return Runner{Stdout: stdout, Stderr: stderr}.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	switch {
	case err != nil:
		r.errorf("%v", err)
		fmt.Fprintln(r.Stderr)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return exitUsage
	case parsed.ShowHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return exitOK
	case parsed.Command == cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return exitOK
	}

	run, ok := handlers[parsed.Command]
	if !ok {
		r.errorf("unsupported command %q", parsed.Command)
		return exitUsage
	}

	logs, err := logging.New()
	if err != nil {
		r.errorf("setup logging: %v", err)
		return exitError
	}
	defer func() { _ = logs.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logs.Logger
	}

	loaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		r.errorf("%v", err)
		logger.Error("load config failed", "error", err.Error())
		return exitError
	}
	logs.SetLevel(loaded.Config.Log.Level)
	r.reportWarnings(loaded.Warnings, logger)

	logger.Info("command start", "command", parsed.Command, "config", loaded.Path, "log", logs.Path)
	return run(r, ctx, invocation{cfg: loaded.Config, logger: logger, parsed: parsed})
}

func (r Runner) reportWarnings(warnings []config.Warning, logger *slog.Logger) {
	for _, w := range warnings {
		text := w.Message
		if w.Line > 0 {
			text = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", text)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}
}

func (r Runner) commandDoctor(ctx context.Context, inv invocation) int {
	report := permission.New(inv.cfg).Check(ctx)
	fmt.Fprintln(r.Stdout, report.String())
	logPermissionReport(inv.logger, report)
	if !report.Ready() {
		return exitError
	}
	return exitOK
}

func (r Runner) commandDevices(ctx context.Context, _ invocation) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		r.errorf("%v", err)
		return exitError
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return exitError
	}
	for _, d := range devices {
		fmt.Fprintln(r.Stdout, deviceLine(d))
	}
	return exitOK
}

// errorf prints one "error: " line to stderr.
func (r Runner) errorf(format string, args ...any) {
	fmt.Fprintf(r.Stderr, "error: "+format+"\n", args...)
}
