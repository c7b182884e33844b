package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/herguard/internal/audio"
	"github.com/rbright/herguard/internal/permission"
	"github.com/rbright/herguard/internal/session"
)

// reportResult prints the user-facing outcome of an owned cycle.
func (r Runner) reportResult(result session.Result) int {
	if result.Cancelled {
		fmt.Fprintln(r.Stdout, "cancelled")
		return exitOK
	}
	if result.Err != nil {
		r.errorf("%v", result.Err)
		return exitError
	}

	if result.Label != "" {
		fmt.Fprintf(r.Stdout, "Detected Emotion: %s\n", result.Label)
	}
	if result.AlertErr != nil {
		r.errorf("failed to send emergency message: %v", result.AlertErr)
	} else if result.AlertSent {
		fmt.Fprintln(r.Stdout, "Emergency message sent!")
	}

	if result.Failed() {
		return exitError
	}
	return exitOK
}

func deviceLine(d audio.Device) string {
	mark := " "
	if d.Default {
		mark = "*"
	}
	return fmt.Sprintf("%s id=%s | description=%q | state=%s | available=%s | muted=%s",
		mark, d.ID, d.Description, d.State, yesNo(d.Available), yesNo(d.Muted))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func logPermissionReport(logger *slog.Logger, report permission.Report) {
	if logger == nil {
		return
	}
	level := slog.LevelInfo
	if !report.Ready() {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "permission report",
		"ok", report.OK(),
		"ready", report.Ready(),
		"denied", report.Denied(),
	)
}

// logSessionResult writes one summary line per cycle. Failures log at error.
func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("cycle_id", result.CycleID),
		slog.String("state", string(result.State)),
		slog.Bool("cancelled", result.Cancelled),
		slog.String("label", result.Label),
		slog.Bool("escalated", result.Escalated),
		slog.Bool("alert_sent", result.AlertSent),
		slog.String("started_at", result.StartedAt.Format(time.RFC3339Nano)),
		slog.String("finished_at", result.FinishedAt.Format(time.RFC3339Nano)),
		slog.Int64("duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds()),
		slog.String("audio_device", result.AudioDevice),
		slog.Int64("bytes_captured", result.BytesCaptured),
		slog.Int64("audio_duration_ms", result.AudioDuration.Milliseconds()),
		slog.Int64("upload_latency_ms", result.UploadLatency.Milliseconds()),
	}
	if result.Detail != "" {
		attrs = append(attrs, slog.String("detail", result.Detail))
	}
	for _, f := range []struct {
		key string
		err error
	}{
		{"location_error", result.LocationErr},
		{"alert_error", result.AlertErr},
		{"error", result.Err},
	} {
		if f.err != nil {
			attrs = append(attrs, slog.String(f.key, f.err.Error()))
		}
	}

	level, msg := slog.LevelInfo, "session complete"
	switch {
	case result.Err != nil:
		level, msg = slog.LevelError, "session failed"
	case result.AlertErr != nil:
		level, msg = slog.LevelError, "emergency alert failed"
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
