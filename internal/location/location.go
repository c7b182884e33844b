// Package location exposes the device's last known position without acquiring a new one.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/permission"
)

// ErrInvalidFix indicates stored coordinates could not be used.
var ErrInvalidFix = errors.New("invalid location fix")

// Fix is a last-known position.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Source    string    `json:"-"`
}

// Validate checks coordinate ranges.
func (f Fix) Validate() error {
	if math.IsNaN(f.Latitude) || f.Latitude < -90 || f.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidFix, f.Latitude)
	}
	if math.IsNaN(f.Longitude) || f.Longitude < -180 || f.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidFix, f.Longitude)
	}
	return nil
}

// Provider returns the cached position, or nil when none is known.
type Provider interface {
	LastKnown(ctx context.Context) (*Fix, error)
}

// New builds the provider selected by cfg.Source.
func New(cfg config.LocationConfig) (Provider, error) {
	switch cfg.Source {
	case config.LocationSourceFile, "":
		return FileProvider{Path: cfg.File}, nil
	case config.LocationSourceStatic:
		return StaticProvider{Fix: Fix{Latitude: cfg.Latitude, Longitude: cfg.Longitude}}, nil
	case config.LocationSourceNone:
		return NoneProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported location source %q", cfg.Source)
	}
}

// FileProvider reads a JSON fix cached on disk.
type FileProvider struct {
	Path string
}

func (p FileProvider) LastKnown(ctx context.Context) (*Fix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.Path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: read %s: %w", permission.ErrPermissionDenied, p.Path, err)
	default:
		return nil, fmt.Errorf("read location cache %s: %w", p.Path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var fix Fix
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidFix, p.Path, err)
	}
	if err := fix.Validate(); err != nil {
		return nil, err
	}
	fix.Source = config.LocationSourceFile
	return &fix, nil
}

// StaticProvider always reports the configured coordinates.
type StaticProvider struct {
	Fix Fix
}

func (p StaticProvider) LastKnown(context.Context) (*Fix, error) {
	if err := p.Fix.Validate(); err != nil {
		return nil, err
	}
	fix := p.Fix
	fix.Source = config.LocationSourceStatic
	return &fix, nil
}

// NoneProvider never knows a position.
type NoneProvider struct{}

func (NoneProvider) LastKnown(context.Context) (*Fix, error) {
	return nil, nil
}

// Remember atomically stores fix as the last known position at path.
func Remember(path string, fix Fix) error {
	if err := fix.Validate(); err != nil {
		return err
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now().UTC()
	}

	payload, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".location-*.json")
	if err != nil {
		return fmt.Errorf("create temp location: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write location: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close location: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace location %q: %w", path, err)
	}
	return nil
}

// ParseCoordinates parses "LAT,LON".
func ParseCoordinates(raw string) (Fix, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Fix{}, fmt.Errorf("%w: expected LAT,LON, got %q", ErrInvalidFix, raw)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: latitude %q", ErrInvalidFix, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: longitude %q", ErrInvalidFix, parts[1])
	}

	fix := Fix{Latitude: lat, Longitude: lon}
	if err := fix.Validate(); err != nil {
		return Fix{}, err
	}
	return fix, nil
}
