// Package pipeline joins audio capture and emotion classification into one analyzer.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/herguard/internal/audio"
	"github.com/rbright/herguard/internal/backend"
	"github.com/rbright/herguard/internal/session"
)

type recorder interface {
	Start(context.Context) error
	Stop() (*audio.Recording, error)
	Cancel() error
}

type classifier interface {
	Predict(ctx context.Context, path string) (backend.Classification, error)
}

// Analyzer records one utterance and uploads it for classification.
type Analyzer struct {
	recorder   recorder
	classifier classifier
	logger     *slog.Logger
}

// NewAnalyzer constructs an analyzer from a recorder and a classifier client.
func NewAnalyzer(rec recorder, cls classifier, logger *slog.Logger) *Analyzer {
	return &Analyzer{recorder: rec, classifier: cls, logger: logger}
}

// Start begins capture.
func (a *Analyzer) Start(ctx context.Context) error {
	return a.recorder.Start(ctx)
}

// StopAndClassify finalizes the recording and uploads it exactly once.
func (a *Analyzer) StopAndClassify(ctx context.Context) (session.Analysis, error) {
	recording, err := a.recorder.Stop()
	if recording == nil && err == nil {
		return session.Analysis{}, session.ErrNotRecording
	}

	analysis := session.Analysis{}
	if recording != nil {
		analysis.RecordingPath = recording.Path
		analysis.AudioDevice = describeDevice(recording.Device)
		analysis.BytesCaptured = recording.BytesCaptured
		analysis.AudioDuration = recording.Duration
	}
	if err != nil {
		return analysis, fmt.Errorf("finalize recording: %w", err)
	}

	classification, err := a.classifier.Predict(ctx, recording.Path)
	analysis.UploadLatency = classification.Latency
	if err != nil {
		return analysis, err
	}

	analysis.Label = classification.Label
	analysis.Detail = classification.Detail
	analysis.StatusCode = classification.StatusCode
	if classification.Detail != "" {
		a.logWarn("classifier reported an error", "status", classification.StatusCode, "detail", classification.Detail)
	}
	return analysis, nil
}

// Cancel discards the active capture without uploading.
func (a *Analyzer) Cancel(context.Context) error {
	return a.recorder.Cancel()
}

// describeDevice formats device metadata for logs/session results.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func (a *Analyzer) logWarn(message string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(message, args...)
}
