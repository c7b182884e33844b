package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const appDir = "herguard"

// ResolvePath picks the config file: an explicit --config path wins, then
// $XDG_CONFIG_HOME/herguard/config.jsonc, then ~/.config/herguard/config.jsonc.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	base, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(base, appDir, "config.jsonc"), nil
}

// StateDir returns $XDG_STATE_HOME, falling back to ~/.local/state.
func StateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, homeRelative string) (string, error) {
	if dir := strings.TrimSpace(os.Getenv(env)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRelative), nil
}

// ExpandUserPath expands a leading "~" or "~/" to the user's home directory.
// "~user" forms are returned unchanged.
func ExpandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	rest, ok := strings.CutPrefix(raw, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, rest)
}
