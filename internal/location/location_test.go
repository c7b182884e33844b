package location

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/permission"
	"github.com/stretchr/testify/require"
)

func TestFileProviderMissingFileIsUnavailable(t *testing.T) {
	p := FileProvider{Path: filepath.Join(t.TempDir(), "last_location.json")}

	fix, err := p.LastKnown(context.Background())
	require.NoError(t, err)
	require.Nil(t, fix)
}

func TestFileProviderReadsCachedFix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_location.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"latitude":12.97,"longitude":77.59,"timestamp":"2026-01-02T03:04:05Z"}`), 0o600))

	fix, err := FileProvider{Path: path}.LastKnown(context.Background())
	require.NoError(t, err)
	require.NotNil(t, fix)
	require.Equal(t, 12.97, fix.Latitude)
	require.Equal(t, 77.59, fix.Longitude)
	require.Equal(t, config.LocationSourceFile, fix.Source)
	require.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), fix.Timestamp)
}

func TestFileProviderStaleFixIsStillReturned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_location.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"latitude":1,"longitude":2,"timestamp":"1999-01-01T00:00:00Z"}`), 0o600))

	fix, err := FileProvider{Path: path}.LastKnown(context.Background())
	require.NoError(t, err)
	require.NotNil(t, fix)
}

func TestFileProviderRejectsMalformedContent(t *testing.T) {
	tests := map[string]string{
		"not json":     `nope`,
		"lat range":    `{"latitude":91,"longitude":0}`,
		"lon range":    `{"latitude":0,"longitude":-181}`,
		"string value": `{"latitude":"north","longitude":0}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "last_location.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			fix, err := FileProvider{Path: path}.LastKnown(context.Background())
			require.ErrorIs(t, err, ErrInvalidFix)
			require.Nil(t, fix)
		})
	}
}

func TestFileProviderEmptyFileIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_location.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	fix, err := FileProvider{Path: path}.LastKnown(context.Background())
	require.NoError(t, err)
	require.Nil(t, fix)
}

func TestFileProviderUnreadableFileIsPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}

	path := filepath.Join(t.TempDir(), "last_location.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"latitude":1,"longitude":2}`), 0o000))

	fix, err := FileProvider{Path: path}.LastKnown(context.Background())
	require.ErrorIs(t, err, permission.ErrPermissionDenied)
	require.Nil(t, fix)
}

func TestStaticAndNoneProviders(t *testing.T) {
	fix, err := StaticProvider{Fix: Fix{Latitude: -33.86, Longitude: 151.2}}.LastKnown(context.Background())
	require.NoError(t, err)
	require.Equal(t, -33.86, fix.Latitude)
	require.Equal(t, config.LocationSourceStatic, fix.Source)

	_, err = StaticProvider{Fix: Fix{Latitude: 100}}.LastKnown(context.Background())
	require.ErrorIs(t, err, ErrInvalidFix)

	fix, err = NoneProvider{}.LastKnown(context.Background())
	require.NoError(t, err)
	require.Nil(t, fix)
}

func TestNewSelectsProvider(t *testing.T) {
	p, err := New(config.LocationConfig{Source: config.LocationSourceFile, File: "/tmp/x.json"})
	require.NoError(t, err)
	require.Equal(t, FileProvider{Path: "/tmp/x.json"}, p)

	p, err = New(config.LocationConfig{Source: config.LocationSourceStatic, Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	require.IsType(t, StaticProvider{}, p)

	p, err = New(config.LocationConfig{Source: config.LocationSourceNone})
	require.NoError(t, err)
	require.IsType(t, NoneProvider{}, p)

	_, err = New(config.LocationConfig{Source: "gps"})
	require.Error(t, err)
}

func TestRememberRoundTripsThroughFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last_location.json")

	require.NoError(t, Remember(path, Fix{Latitude: 12.97, Longitude: 77.59}))

	fix, err := FileProvider{Path: path}.LastKnown(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12.97, fix.Latitude)
	require.Equal(t, 77.59, fix.Longitude)
	require.False(t, fix.Timestamp.IsZero())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRememberRejectsInvalidFix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_location.json")
	require.ErrorIs(t, Remember(path, Fix{Latitude: 120}), ErrInvalidFix)

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseCoordinates(t *testing.T) {
	fix, err := ParseCoordinates(" 12.97 , 77.59 ")
	require.NoError(t, err)
	require.Equal(t, 12.97, fix.Latitude)
	require.Equal(t, 77.59, fix.Longitude)

	for _, raw := range []string{"", "12.97", "1,2,3", "abc,1", "1,abc", "91,0", "NaN,0", "12.97x,1"} {
		_, err := ParseCoordinates(raw)
		require.ErrorIs(t, err, ErrInvalidFix, raw)
	}
}
