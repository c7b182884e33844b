package session

import (
	"context"
	"errors"
	"time"

	"github.com/rbright/herguard/internal/alert"
)

var (
	// ErrPipelineUnavailable indicates runtime analyzer wiring is missing.
	ErrPipelineUnavailable = errors.New("audio capture and classifier pipeline not wired")
	// ErrNotRecording indicates stop reached the analyzer without an active capture.
	ErrNotRecording = errors.New("no active recording")
)

// Analysis is the analyzer output consumed by the session controller.
type Analysis struct {
	Label         string
	Detail        string
	StatusCode    int
	RecordingPath string
	AudioDevice   string
	BytesCaptured int64
	AudioDuration time.Duration
	UploadLatency time.Duration
}

// Analyzer abstracts capture and classification operations needed by the session.
type Analyzer interface {
	Start(context.Context) error
	StopAndClassify(context.Context) (Analysis, error)
	Cancel(context.Context) error
}

// Gate verifies the microphone before a capture starts.
type Gate interface {
	RequireMicrophone(context.Context) error
}

// Escalator sends one emergency message.
type Escalator interface {
	Dispatch(context.Context) alert.Outcome
}

// EscalatorFunc adapts a function to the Escalator interface.
type EscalatorFunc func(context.Context) alert.Outcome

func (f EscalatorFunc) Dispatch(ctx context.Context) alert.Outcome {
	return f(ctx)
}

// PlaceholderAnalyzer is a no-op placeholder used in tests/fallback wiring.
type PlaceholderAnalyzer struct{}

func (PlaceholderAnalyzer) Start(context.Context) error {
	return nil
}

func (PlaceholderAnalyzer) StopAndClassify(context.Context) (Analysis, error) {
	return Analysis{}, ErrPipelineUnavailable
}

func (PlaceholderAnalyzer) Cancel(context.Context) error {
	return nil
}

type allowGate struct{}

func (allowGate) RequireMicrophone(context.Context) error { return nil }
