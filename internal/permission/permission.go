// Package permission checks the runtime capabilities a cycle depends on:
// microphone, storage, location, and network.
package permission

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/herguard/internal/audio"
	"github.com/rbright/herguard/internal/config"
)

// ErrPermissionDenied indicates a capability required for an action is unavailable.
var ErrPermissionDenied = errors.New("permission denied")

const networkDialTimeout = 2 * time.Second

// Check is one capability assertion result.
type Check struct {
	Name     string
	Pass     bool
	Message  string
	Required bool
}

// Report is the combined result of one permission pass.
type Report struct {
	Checks []Check
}

// OK returns true when every check passes.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// Ready returns true when every required check passes.
func (r Report) Ready() bool {
	for _, check := range r.Checks {
		if check.Required && !check.Pass {
			return false
		}
	}
	return true
}

// Denied lists the names of failing checks.
func (r Report) Denied() []string {
	var names []string
	for _, check := range r.Checks {
		if !check.Pass {
			names = append(names, check.Name)
		}
	}
	return names
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		switch {
		case !check.Pass && check.Required:
			status = "FAIL"
		case !check.Pass:
			status = "WARN"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Gate evaluates capabilities for a loaded config.
type Gate struct {
	cfg config.Config

	selectDevice func(ctx context.Context, input, fallback string) (audio.Selection, error)
	dial         func(ctx context.Context, network, address string) (net.Conn, error)
}

// New constructs a gate backed by Pulse device selection and TCP dials.
func New(cfg config.Config) *Gate {
	dialer := &net.Dialer{Timeout: networkDialTimeout}
	return &Gate{
		cfg:          cfg,
		selectDevice: audio.SelectDevice,
		dial:         dialer.DialContext,
	}
}

// Check runs all capability checks in one pass.
func (g *Gate) Check(ctx context.Context) Report {
	checks := []Check{
		g.checkMicrophone(ctx),
		g.checkStorage(),
		g.checkLocation(),
		g.checkNetwork(ctx),
	}
	if g.cfg.Indicator.Enable {
		checks = append(checks, checkNotifier(g.cfg.Indicator.Backend))
	}
	return Report{Checks: checks}
}

// RequireMicrophone re-checks only the microphone. Other capabilities never block capture.
func (g *Gate) RequireMicrophone(ctx context.Context) error {
	check := g.checkMicrophone(ctx)
	if check.Pass {
		return nil
	}
	return fmt.Errorf("%w: microphone: %s", ErrPermissionDenied, check.Message)
}

// IsDenied reports whether err is a permission failure.
func IsDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func (g *Gate) checkMicrophone(ctx context.Context) Check {
	selection, err := g.selectDevice(ctx, g.cfg.Audio.Input, g.cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "microphone", Pass: false, Required: true, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "microphone", Pass: true, Required: true, Message: message}
}

// checkStorage verifies the recording directory accepts new files.
func (g *Gate) checkStorage() Check {
	dir := filepath.Dir(g.cfg.Recording.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "storage", Pass: false, Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return Check{Name: "storage", Pass: false, Message: fmt.Sprintf("cannot write %s: %v", dir, err)}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return Check{Name: "storage", Pass: true, Message: fmt.Sprintf("writable %s", dir)}
}

func (g *Gate) checkLocation() Check {
	loc := g.cfg.Location
	switch loc.Source {
	case config.LocationSourceNone:
		return Check{Name: "location", Pass: true, Message: "disabled; alerts omit coordinates"}
	case config.LocationSourceStatic:
		return Check{Name: "location", Pass: true, Message: fmt.Sprintf("static %v,%v", loc.Latitude, loc.Longitude)}
	}

	f, err := os.Open(loc.File)
	switch {
	case err == nil:
		_ = f.Close()
		return Check{Name: "location", Pass: true, Message: fmt.Sprintf("readable %s", loc.File)}
	case errors.Is(err, os.ErrNotExist):
		return Check{Name: "location", Pass: true, Message: fmt.Sprintf("no cached fix yet at %s", loc.File)}
	case errors.Is(err, os.ErrPermission):
		return Check{Name: "location", Pass: false, Message: "Location permission not granted"}
	default:
		return Check{Name: "location", Pass: false, Message: err.Error()}
	}
}

// checkNetwork dials the configured server host.
func (g *Gate) checkNetwork(ctx context.Context) Check {
	address, err := dialAddress(g.cfg.Server.BaseURL)
	if err != nil {
		return Check{Name: "network", Pass: false, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, networkDialTimeout)
	defer cancel()

	conn, err := g.dial(ctx, "tcp", address)
	if err != nil {
		return Check{Name: "network", Pass: false, Message: fmt.Sprintf("cannot reach %s: %v", address, err)}
	}
	_ = conn.Close()
	return Check{Name: "network", Pass: true, Message: fmt.Sprintf("reachable %s", address)}
}

func dialAddress(baseURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid server.base_url: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("server.base_url has no host")
	}
	port := parsed.Port()
	if port == "" {
		port = "80"
		if parsed.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(host, port), nil
}

// checkNotifier validates that the notification backend binary exists in PATH.
func checkNotifier(backend string) Check {
	bin := "hyprctl"
	if strings.EqualFold(strings.TrimSpace(backend), config.IndicatorBackendDesktop) {
		bin = "busctl"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: "notifications", Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: "notifications", Pass: true, Message: fmt.Sprintf("found %s at %s", bin, path)}
}
