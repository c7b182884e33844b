// Package audio handles input discovery, microphone capture, and the recording file.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Usable reports whether the source can deliver audio right now.
func (d Device) Usable() bool {
	return d.Available && !d.Muted
}

func (d Device) condition() string {
	switch {
	case d.Muted:
		return "muted"
	case !d.Available:
		return "unavailable"
	default:
		return "ready"
	}
}

// Selection is the source a capture will use. Warning is set when the
// configured input was skipped for the fallback.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// ListDevices returns the Pulse input sources, marking the server default.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	def, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, deviceFromInfo(info, def.ID()))
	}
	return devices, nil
}

// SelectDevice resolves the audio.input and audio.fallback preferences.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return chooseDevice(devices, input, fallback)
}

// preference is a lower-cased device search term. Empty means the server default.
type preference string

func newPreference(raw string) preference {
	term := strings.ToLower(strings.TrimSpace(raw))
	if term == "default" {
		term = ""
	}
	return preference(term)
}

func (p preference) find(devices []Device) *Device {
	if p == "" {
		return defaultDevice(devices)
	}
	for i := range devices {
		if deviceMatches(devices[i], string(p)) {
			return &devices[i]
		}
	}
	return nil
}

func chooseDevice(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	want, alt := newPreference(input), newPreference(fallback)

	primary := want.find(devices)
	if primary == nil {
		if want == "" {
			return Selection{}, errors.New("default audio source is unavailable")
		}
		return Selection{}, fmt.Errorf("audio.input %q did not match any device", input)
	}
	if primary.Usable() {
		return Selection{Device: *primary}, nil
	}

	backup := alt.find(devices)
	if backup == nil {
		if alt == "" {
			return Selection{}, fmt.Errorf("input %q is %s and no default source exists", primary.ID, primary.condition())
		}
		return Selection{}, fmt.Errorf("input %q is %s and fallback %q not found", primary.ID, primary.condition(), fallback)
	}
	if !backup.Usable() {
		return Selection{}, fmt.Errorf("fallback input %q is %s", backup.ID, backup.condition())
	}

	return Selection{
		Device:   *backup,
		Warning:  fmt.Sprintf("audio.input %q is %s; recording from %q", primary.ID, primary.condition(), backup.ID),
		Fallback: backup.ID != primary.ID,
	}, nil
}

func defaultDevice(devices []Device) *Device {
	for i := range devices {
		if devices[i].Default {
			return &devices[i]
		}
	}
	return nil
}

// deviceMatches reports whether term is a substring of the device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(device.ID), term) ||
		strings.Contains(strings.ToLower(device.Description), term)
}

func deviceFromInfo(info *pulseproto.GetSourceInfoReply, defaultID string) Device {
	return Device{
		ID:          info.SourceName,
		Description: info.Device,
		State:       sourceState(info.State),
		Available:   portAvailable(info),
		Muted:       info.Mute,
		Default:     info.SourceName == defaultID,
	}
}

func connect() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("herguard"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

func sourceState(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// portAvailable treats a source without ports, or whose active port is not
// reported as unplugged, as available.
func portAvailable(info *pulseproto.GetSourceInfoReply) bool {
	const portUnplugged = 1
	for _, port := range info.Ports {
		if port.Name == info.ActivePortName {
			return port.Available != portUnplugged
		}
	}
	return true
}
