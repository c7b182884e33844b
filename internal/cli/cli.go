// Package cli parses herguard command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandToggle  Command = "toggle"
	CommandStop    Command = "stop"
	CommandCancel  Command = "cancel"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandLocate  Command = "locate"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// commands lists every subcommand in help order.
var commands = []struct {
	name    Command
	summary string
}{
	{CommandToggle, "Start recording, or stop and classify when already recording"},
	{CommandStop, "Stop the active recording and classify it"},
	{CommandCancel, "Discard the active recording without uploading"},
	{CommandStatus, "Print current state"},
	{CommandDevices, "List available input devices"},
	{CommandLocate, "Print the last known location (--set LAT,LON stores one)"},
	{CommandDoctor, "Check microphone, storage, location, and network readiness"},
	{CommandVersion, "Print version information"},
	{CommandHelp, "Show this help"},
}

func known(name string) (Command, bool) {
	for _, c := range commands {
		if string(c.name) == name {
			return c.name, true
		}
	}
	return "", false
}

// Parsed is the normalized invocation.
type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool

	// SetLocation holds the raw LAT,LON value of `locate --set`.
	SetLocation string
}

var errSetValue = errors.New("--set requires LAT,LON")

// Parse reads global flags followed by at most one command. Only `locate`
// takes arguments of its own. With no command, help is shown.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for len(args) > 0 {
		arg := args[0]
		args = args[1:]

		if path, ok := strings.CutPrefix(arg, "--config="); ok {
			parsed.ConfigPath = path
			continue
		}

		switch {
		case arg == "-h" || arg == "--help":
			parsed.Command, parsed.ShowHelp = CommandHelp, true
		case arg == "--version":
			parsed.Command, parsed.ShowHelp = CommandVersion, false
		case arg == "--config":
			if len(args) == 0 {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath, args = args[0], args[1:]
		case strings.HasPrefix(arg, "-"):
			return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
		default:
			cmd, ok := known(arg)
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}
			parsed.Command, parsed.ShowHelp = cmd, cmd == CommandHelp
			return withCommandArgs(parsed, args)
		}
	}
	return parsed, nil
}

func withCommandArgs(parsed Parsed, rest []string) (Parsed, error) {
	if parsed.Command != CommandLocate {
		if len(rest) > 0 {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
		}
		return parsed, nil
	}

	value, err := locateSetValue(rest)
	if err != nil {
		return Parsed{}, err
	}
	parsed.SetLocation = value
	return parsed, nil
}

// locateSetValue accepts nothing, `--set V`, or `--set=V`.
func locateSetValue(rest []string) (string, error) {
	if len(rest) == 0 {
		return "", nil
	}

	var value string
	switch flag, inline, hasInline := strings.Cut(rest[0], "="); {
	case flag != "--set":
		return "", fmt.Errorf("unexpected arguments after command %q", CommandLocate)
	case hasInline:
		value, rest = inline, rest[1:]
	case len(rest) < 2:
		return "", errSetValue
	default:
		value, rest = rest[1], rest[2:]
	}

	if len(rest) > 0 {
		return "", fmt.Errorf("unexpected arguments after command %q", CommandLocate)
	}
	if value = strings.TrimSpace(value); value == "" {
		return "", errSetValue
	}
	return value, nil
}

// HelpText renders usage for binaryName.
func HelpText(binaryName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage:\n  %s [--config PATH] <command>\n\nCommands:\n", binaryName)
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-9s %s\n", c.name, c.summary)
	}
	b.WriteString(`
Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/herguard/config.jsonc)
  -h, --help      Show help
  --version       Show version
`)
	return b.String()
}
