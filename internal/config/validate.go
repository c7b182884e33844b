package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validateBaseURL(cfg.Server.BaseURL); err != nil {
		return nil, err
	}
	if cfg.Server.TimeoutMS <= 0 {
		return nil, fmt.Errorf("server.timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Recording.Path) == "" {
		return nil, fmt.Errorf("recording.path must not be empty")
	}
	if !strings.EqualFold(filepath.Ext(cfg.Recording.Path), ".wav") {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("recording.path %q does not end in .wav; the file is always written as WAV", cfg.Recording.Path)})
	}

	switch cfg.Location.Source {
	case LocationSourceFile:
		if strings.TrimSpace(cfg.Location.File) == "" {
			return nil, fmt.Errorf("location.file must not be empty when location.source=file")
		}
	case LocationSourceStatic:
		if cfg.Location.Latitude < -90 || cfg.Location.Latitude > 90 {
			return nil, fmt.Errorf("location.latitude must be within [-90, 90]")
		}
		if cfg.Location.Longitude < -180 || cfg.Location.Longitude > 180 {
			return nil, fmt.Errorf("location.longitude must be within [-180, 180]")
		}
	case LocationSourceNone:
		warnings = append(warnings, Warning{Message: "location.source=none; emergency messages will never carry coordinates"})
	default:
		return nil, fmt.Errorf("location.source must be one of: file, static, none")
	}

	for _, raw := range cfg.Alert.RelayURLs {
		if !strings.Contains(raw, "://") {
			return nil, fmt.Errorf("alert.relay_urls entry %q is not a service URL", raw)
		}
	}
	if cfg.Alert.RelayTimeoutMS < 0 {
		return nil, fmt.Errorf("alert.relay_timeout_ms must be >= 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Indicator.Backend))
	if backend == "" {
		return nil, fmt.Errorf("indicator.backend must not be empty")
	}
	if backend != IndicatorBackendHypr && backend != IndicatorBackendDesktop {
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if backend == IndicatorBackendDesktop && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.NoticeTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.notice_timeout_ms must be >= 0")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}

func validateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("server.base_url must not be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("server.base_url is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.base_url must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("server.base_url must include a host")
	}
	return nil
}
