package config

import "path/filepath"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	var recordingPath, locationPath string
	if stateDir, err := StateDir(); err == nil {
		recordingPath = filepath.Join(stateDir, appDir, "recorded_audio.wav")
		locationPath = filepath.Join(stateDir, appDir, "last_location.json")
	}

	return Config{
		Server: ServerConfig{
			BaseURL:   "http://127.0.0.1:5000",
			TimeoutMS: 15000,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Recording: RecordingConfig{Path: recordingPath},
		Location: LocationConfig{
			Source: LocationSourceFile,
			File:   locationPath,
		},
		Alert: AlertConfig{
			RelayTimeoutMS: 5000,
		},
		Indicator: IndicatorConfig{
			Enable:          true,
			Backend:         IndicatorBackendHypr,
			DesktopAppName:  "herguard",
			SoundEnable:     true,
			NoticeTimeoutMS: 3500,
			ErrorTimeoutMS:  2000,
		},
		Log: LogConfig{Level: "info"},
	}
}
