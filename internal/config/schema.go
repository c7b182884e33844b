package config

import (
	"encoding/json"
	"errors"
	"strings"
)

// fileConfig mirrors config.jsonc. Nil fields leave the base value alone.
type fileConfig struct {
	Server *struct {
		BaseURL   *string `json:"base_url"`
		TimeoutMS *int    `json:"timeout_ms"`
	} `json:"server"`
	Audio *struct {
		Input    *string `json:"input"`
		Fallback *string `json:"fallback"`
	} `json:"audio"`
	Recording *struct {
		Path *string `json:"path"`
	} `json:"recording"`
	Location *struct {
		Source    *string  `json:"source"`
		File      *string  `json:"file"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	Alert *struct {
		RelayURLs      *jsoncStringList `json:"relay_urls"`
		RelayTimeoutMS *int             `json:"relay_timeout_ms"`
	} `json:"alert"`
	Indicator *fileIndicator `json:"indicator"`
	Log       *struct {
		Level *string `json:"level"`
	} `json:"log"`
}

type fileIndicator struct {
	Enable            *bool   `json:"enable"`
	Backend           *string `json:"backend"`
	DesktopAppName    *string `json:"desktop_app_name"`
	SoundEnable       *bool   `json:"sound_enable"`
	SoundStartFile    *string `json:"sound_start_file"`
	SoundStopFile     *string `json:"sound_stop_file"`
	SoundCompleteFile *string `json:"sound_complete_file"`
	SoundCancelFile   *string `json:"sound_cancel_file"`
	SoundAlertFile    *string `json:"sound_alert_file"`
	NoticeTimeoutMS   *int    `json:"notice_timeout_ms"`
	ErrorTimeoutMS    *int    `json:"error_timeout_ms"`
}

// jsoncStringList accepts either a string array or one comma-delimited string.
type jsoncStringList []string

func (l *jsoncStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return errors.New("expected string array or comma-delimited string")
	}
	*l = nonEmpty(strings.Split(joined, ","))
	return nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setWith[T any](dst *T, src *T, normalize func(T) T) {
	if src != nil {
		*dst = normalize(*src)
	}
}

func lowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (f fileConfig) overlay(cfg *Config) {
	if s := f.Server; s != nil {
		setWith(&cfg.Server.BaseURL, s.BaseURL, strings.TrimSpace)
		set(&cfg.Server.TimeoutMS, s.TimeoutMS)
	}
	if a := f.Audio; a != nil {
		set(&cfg.Audio.Input, a.Input)
		set(&cfg.Audio.Fallback, a.Fallback)
	}
	if r := f.Recording; r != nil {
		setWith(&cfg.Recording.Path, r.Path, ExpandUserPath)
	}
	if l := f.Location; l != nil {
		setWith(&cfg.Location.Source, l.Source, lowerTrim)
		setWith(&cfg.Location.File, l.File, ExpandUserPath)
		set(&cfg.Location.Latitude, l.Latitude)
		set(&cfg.Location.Longitude, l.Longitude)
	}
	if a := f.Alert; a != nil {
		if a.RelayURLs != nil {
			cfg.Alert.RelayURLs = nonEmpty(*a.RelayURLs)
		}
		set(&cfg.Alert.RelayTimeoutMS, a.RelayTimeoutMS)
	}
	if i := f.Indicator; i != nil {
		ind := &cfg.Indicator
		set(&ind.Enable, i.Enable)
		setWith(&ind.Backend, i.Backend, strings.TrimSpace)
		setWith(&ind.DesktopAppName, i.DesktopAppName, strings.TrimSpace)
		set(&ind.SoundEnable, i.SoundEnable)
		setWith(&ind.SoundStartFile, i.SoundStartFile, strings.TrimSpace)
		setWith(&ind.SoundStopFile, i.SoundStopFile, strings.TrimSpace)
		setWith(&ind.SoundCompleteFile, i.SoundCompleteFile, strings.TrimSpace)
		setWith(&ind.SoundCancelFile, i.SoundCancelFile, strings.TrimSpace)
		setWith(&ind.SoundAlertFile, i.SoundAlertFile, strings.TrimSpace)
		set(&ind.NoticeTimeoutMS, i.NoticeTimeoutMS)
		set(&ind.ErrorTimeoutMS, i.ErrorTimeoutMS)
	}
	if l := f.Log; l != nil {
		setWith(&cfg.Log.Level, l.Level, lowerTrim)
	}
}
