package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/location"
	"github.com/rbright/herguard/internal/permission"
	"github.com/rbright/herguard/internal/session"
)

// commandLocate prints the cached fix, or stores one with --set.
func (r Runner) commandLocate(ctx context.Context, inv invocation) int {
	if inv.parsed.SetLocation != "" {
		return r.storeLocation(inv)
	}

	provider, err := location.New(inv.cfg.Location)
	if err != nil {
		r.errorf("%v", err)
		return exitError
	}

	fix, err := provider.LastKnown(ctx)
	switch {
	case permission.IsDenied(err):
		r.errorf("%s", session.NoticeLocationDenied)
		return exitError
	case err != nil:
		r.errorf("%v", err)
		return exitError
	case fix == nil:
		fmt.Fprintln(r.Stdout, "no location known")
		return exitError
	}

	fmt.Fprintln(r.Stdout, formatFix(*fix))
	return exitOK
}

// storeLocation writes a manual fix into the file cache. Malformed input is
// a usage error.
func (r Runner) storeLocation(inv invocation) int {
	loc := inv.cfg.Location
	fix, err := location.ParseCoordinates(inv.parsed.SetLocation)
	if err != nil {
		r.errorf("%v", err)
		return exitUsage
	}
	if loc.Source != config.LocationSourceFile {
		r.errorf("locate --set requires location.source %q (configured %q)", config.LocationSourceFile, loc.Source)
		return exitError
	}

	fix.Timestamp = time.Now().UTC()
	switch err := location.Remember(loc.File, fix); {
	case errors.Is(err, location.ErrInvalidFix):
		r.errorf("%v", err)
		return exitUsage
	case err != nil:
		r.errorf("%v", err)
		return exitError
	}

	inv.logger.Info("location stored", "path", loc.File)
	fix.Source = config.LocationSourceFile
	fmt.Fprintln(r.Stdout, formatFix(fix))
	return exitOK
}

func formatFix(fix location.Fix) string {
	coords := strconv.FormatFloat(fix.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(fix.Longitude, 'f', -1, 64)
	var extra string
	if fix.Source != "" {
		extra += " source=" + fix.Source
	}
	if !fix.Timestamp.IsZero() {
		extra += " recorded=" + fix.Timestamp.UTC().Format(time.RFC3339)
	}
	return coords + extra
}
