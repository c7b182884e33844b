package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Recording format. Fixed; not configurable.
const (
	SampleRate = 16000
	BitDepth   = 16
	Channels   = 1
)

var (
	// ErrDeviceUnavailable indicates the input device could not be acquired or prepared.
	ErrDeviceUnavailable = errors.New("recording device unavailable")
	// ErrAlreadyRecording indicates Start was called while a capture session is active.
	ErrAlreadyRecording = errors.New("recording already in progress")
)

// pcmSource is the live capture consumed by Recorder.
type pcmSource interface {
	Stop() error
	RawPCM() []byte
	BytesCaptured() int64
	Truncated() bool
	Device() Device
}

// CaptureSession is one in-progress recording attempt.
type CaptureSession struct {
	Path      string
	StartedAt time.Time
	Device    Device

	source pcmSource
}

// Recording describes the finalized WAV file produced by Stop.
type Recording struct {
	Path          string
	StartedAt     time.Time
	Duration      time.Duration
	BytesCaptured int64
	Truncated     bool
	Device        Device
}

// Recorder owns at most one CaptureSession and writes it to a fixed WAV path.
type Recorder struct {
	path     string
	input    string
	fallback string
	logger   *slog.Logger

	now   func() time.Time
	start func(context.Context) (pcmSource, Selection, error)

	mu      sync.Mutex
	session *CaptureSession
}

// NewRecorder constructs a recorder that overwrites path on every stop.
func NewRecorder(path, input, fallback string, logger *slog.Logger) *Recorder {
	r := &Recorder{
		path:     path,
		input:    input,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
	r.start = r.startPulse
	return r
}

// Path returns the fixed recording file path.
func (r *Recorder) Path() string {
	return r.path
}

// Active reports whether a capture session is running.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Start acquires the input device and begins capturing.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return ErrAlreadyRecording
	}

	source, selection, err := r.start(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	if selection.Warning != "" && r.logger != nil {
		r.logger.Warn(selection.Warning)
	}

	r.session = &CaptureSession{
		Path:      r.path,
		StartedAt: r.now(),
		Device:    source.Device(),
		source:    source,
	}
	return nil
}

// Stop finalizes the active session into the recording file.
// Without an active session it does nothing and returns nil, nil.
func (r *Recorder) Stop() (*Recording, error) {
	session := r.takeSession()
	if session == nil {
		return nil, nil
	}

	_ = session.source.Stop()
	pcm := session.source.RawPCM()

	recording := &Recording{
		Path:          session.Path,
		StartedAt:     session.StartedAt,
		Duration:      pcmDuration(len(pcm)),
		BytesCaptured: session.source.BytesCaptured(),
		Truncated:     session.source.Truncated(),
		Device:        session.Device,
	}
	if recording.Truncated && r.logger != nil {
		r.logger.Warn("recording reached the capture limit; later audio was dropped", "duration", recording.Duration)
	}

	if err := writeWAV(session.Path, pcm); err != nil {
		return recording, fmt.Errorf("write recording: %w", err)
	}
	return recording, nil
}

// Cancel discards the active session without touching the recording file.
func (r *Recorder) Cancel() error {
	session := r.takeSession()
	if session == nil {
		return nil
	}
	return session.source.Stop()
}

func (r *Recorder) takeSession() *CaptureSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.session
	r.session = nil
	return session
}

// startPulse resolves the configured device and opens a Pulse capture.
func (r *Recorder) startPulse(ctx context.Context) (pcmSource, Selection, error) {
	selection, err := SelectDevice(ctx, r.input, r.fallback)
	if err != nil {
		return nil, Selection{}, err
	}
	capture, err := StartCapture(ctx, selection.Device)
	if err != nil {
		return nil, selection, err
	}
	return capture, selection, nil
}

func pcmDuration(byteCount int) time.Duration {
	bytesPerSecond := SampleRate * Channels * (BitDepth / 8)
	return time.Duration(byteCount) * time.Second / time.Duration(bytesPerSecond)
}
