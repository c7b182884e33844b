// Package session coordinates one record, classify, and escalate cycle.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/herguard/internal/alert"
	"github.com/rbright/herguard/internal/fsm"
)

// Notice texts shown to the user.
const (
	NoticePermissionDenied   = "Permission Denied"
	NoticeStartFailed        = "Unable to start recording"
	NoticeLocationDenied     = "Location permission not granted"
	NoticeCancelled          = "Cancelled"
	noticeAlertFailedPrefix  = "Failed to send emergency message: "
	noticeUploadFailedPrefix = "Error: "
)

const hideTimeout = 800 * time.Millisecond

// Result is what one Run reports back to the CLI.
type Result struct {
	CycleID       string
	State         fsm.State
	Label         string
	Detail        string
	Escalated     bool
	AlertSent     bool
	AlertMessage  string
	AlertErr      error
	LocationErr   error
	Cancelled     bool
	Err           error
	RecordingPath string
	AudioDevice   string
	BytesCaptured int64
	AudioDuration time.Duration
	UploadLatency time.Duration
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Failed reports whether the cycle or its alert failed.
func (r Result) Failed() bool {
	return r.Err != nil || r.AlertErr != nil
}

// absorb copies capture and upload metrics, which are kept even on failure.
func (r *Result) absorb(a Analysis) {
	r.RecordingPath = a.RecordingPath
	r.AudioDevice = a.AudioDevice
	r.BytesCaptured = a.BytesCaptured
	r.AudioDuration = a.AudioDuration
	r.UploadLatency = a.UploadLatency
}

// Indicator is what the controller needs from the notice and cue surface.
type Indicator interface {
	ShowRecording(context.Context)
	ShowUploading(context.Context)
	ShowEmotion(context.Context, string)
	ShowAlertSent(context.Context)
	ShowError(context.Context, string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
	CueAlert(context.Context)
	Hide(context.Context)
}

type silentIndicator struct{}

func (silentIndicator) ShowRecording(context.Context)       {}
func (silentIndicator) ShowUploading(context.Context)       {}
func (silentIndicator) ShowEmotion(context.Context, string) {}
func (silentIndicator) ShowAlertSent(context.Context)       {}
func (silentIndicator) ShowError(context.Context, string)   {}
func (silentIndicator) CueStop(context.Context)             {}
func (silentIndicator) CueComplete(context.Context)         {}
func (silentIndicator) CueCancel(context.Context)           {}
func (silentIndicator) CueAlert(context.Context)            {}
func (silentIndicator) Hide(context.Context)                {}

// Controller owns one cycle's state machine. Run drives it; Handle feeds it
// stop and cancel requests from other invocations.
type Controller struct {
	logger    *slog.Logger
	gate      Gate
	analyze   Analyzer
	escalate  Escalator
	indicator Indicator

	mu      sync.RWMutex
	state   fsm.State
	cycleID string
	pending action

	actions chan action
}

// NewController fills nil collaborators with inert stand-ins.
func NewController(logger *slog.Logger, gate Gate, analyzer Analyzer, escalator Escalator, indicator Indicator) *Controller {
	c := &Controller{
		logger:    logger,
		gate:      gate,
		analyze:   analyzer,
		escalate:  escalator,
		indicator: indicator,
		state:     fsm.StateIdle,
		actions:   make(chan action, 1),
	}
	if c.gate == nil {
		c.gate = allowGate{}
	}
	if c.analyze == nil {
		c.analyze = PlaceholderAnalyzer{}
	}
	if c.escalate == nil {
		c.escalate = EscalatorFunc(func(context.Context) alert.Outcome {
			return alert.Outcome{SendErr: ErrPipelineUnavailable}
		})
	}
	if c.indicator == nil {
		c.indicator = silentIndicator{}
	}
	return c
}

func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CycleID returns the identifier of the cycle this controller is running.
func (c *Controller) CycleID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cycleID
}

func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// IsPipelineUnavailable reports whether err comes from placeholder wiring.
func IsPipelineUnavailable(err error) bool {
	return errors.Is(err, ErrPipelineUnavailable)
}
