// Package config resolves, parses, validates, and defaults herguard configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by herguard.
type Config struct {
	Server    ServerConfig
	Audio     AudioConfig
	Recording RecordingConfig
	Location  LocationConfig
	Alert     AlertConfig
	Indicator IndicatorConfig
	Log       LogConfig
}

// ServerConfig points at the backend serving /predict and /send_emergency.
type ServerConfig struct {
	BaseURL   string
	TimeoutMS int
}

// Timeout returns the per-request network timeout.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// RecordingConfig controls where the single recording file lives.
type RecordingConfig struct {
	Path string
}

// LocationConfig selects where the last known fix is read from.
type LocationConfig struct {
	Source    string
	File      string
	Latitude  float64
	Longitude float64
}

const (
	LocationSourceFile   = "file"
	LocationSourceStatic = "static"
	LocationSourceNone   = "none"
)

// AlertConfig controls optional best-effort relays of the emergency text.
type AlertConfig struct {
	RelayURLs      []string
	RelayTimeoutMS int
}

const (
	IndicatorBackendHypr    = "hypr"
	IndicatorBackendDesktop = "desktop"
)

// IndicatorConfig controls visual notices and audio cue behavior.
type IndicatorConfig struct {
	Enable            bool
	Backend           string
	DesktopAppName    string
	SoundEnable       bool
	SoundStartFile    string
	SoundStopFile     string
	SoundCompleteFile string
	SoundCancelFile   string
	SoundAlertFile    string
	NoticeTimeoutMS   int
	ErrorTimeoutMS    int
}

// LogConfig controls runtime log verbosity.
type LogConfig struct {
	Level string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
