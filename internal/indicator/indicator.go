// Package indicator shows cycle notices and plays audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/herguard/internal/config"
	"github.com/rbright/herguard/internal/hypr"
)

const (
	colorRecording = "rgb(89b4fa)"
	colorUploading = "rgb(cba6f7)"
	colorEmotion   = "rgb(f9e2af)"
	colorSent      = "rgb(a6e3a1)"
	colorError     = "rgb(f38ba8)"

	persistentTimeoutMS = 300000
	defaultNoticeMS     = 3500
	defaultErrorMS      = 1200

	dispatchTimeout = 400 * time.Millisecond
	cueTimeout      = 4 * time.Second
)

// Controller is the session-facing indicator contract.
type Controller interface {
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

// notice is one surface update. opening marks the first notice of a cycle,
// which has nothing on screen to replace.
type notice struct {
	icon     int
	color    string
	timeout  int
	critical bool
	opening  bool
	text     string
}

// Notifier routes notices to the Hyprland overlay or the desktop
// notification daemon, per indicator.backend.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages

	mu        sync.Mutex
	desktopID uint32

	soundMu sync.Mutex
	cues    sync.WaitGroup
}

// NewNotifier creates an indicator controller from config.
func NewNotifier(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: english,
	}
}

func (n *Notifier) ShowRecording(ctx context.Context) {
	n.playCue(cueStart)
	n.post(ctx, notice{
		icon:    hypr.IconInfo,
		color:   colorRecording,
		timeout: persistentTimeoutMS,
		opening: true,
		text:    n.messages.recording,
	})
}

func (n *Notifier) ShowUploading(ctx context.Context) {
	n.post(ctx, notice{
		icon:    hypr.IconInfo,
		color:   colorUploading,
		timeout: persistentTimeoutMS,
		text:    n.messages.uploading,
	})
}

// ShowEmotion displays the classifier's label, "Unknown" when empty.
func (n *Notifier) ShowEmotion(ctx context.Context, label string) {
	n.post(ctx, notice{
		icon:    hypr.IconInfo,
		color:   colorEmotion,
		timeout: positiveOr(n.cfg.NoticeTimeoutMS, defaultNoticeMS),
		text:    n.messages.emotion(label),
	})
}

func (n *Notifier) ShowAlertSent(ctx context.Context) {
	n.post(ctx, notice{
		icon:     hypr.IconOK,
		color:    colorSent,
		timeout:  positiveOr(n.cfg.NoticeTimeoutMS, defaultNoticeMS),
		critical: true,
		text:     n.messages.alertSent,
	})
}

// ShowError replaces the current notice with text, or the generic
// classification failure when text is empty.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if text == "" {
		text = n.messages.errorText
	}
	n.post(ctx, notice{
		icon:     hypr.IconError,
		color:    colorError,
		timeout:  positiveOr(n.cfg.ErrorTimeoutMS, defaultErrorMS),
		critical: true,
		text:     text,
	})
}

func (n *Notifier) CueStop(context.Context)     { n.playCue(cueStop) }
func (n *Notifier) CueComplete(context.Context) { n.playCue(cueComplete) }
func (n *Notifier) CueCancel(context.Context)   { n.playCue(cueCancel) }
func (n *Notifier) CueAlert(context.Context)    { n.playCue(cueAlert) }

// Hide dismisses whatever the notifier last put on screen.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		if n.desktop() {
			return n.dismissDesktop(ctx)
		}
		return hypr.Dismiss(ctx)
	})
}

// Wait blocks until queued cues finish playing.
func (n *Notifier) Wait() {
	n.cues.Wait()
}

func (n *Notifier) desktop() bool {
	return strings.EqualFold(strings.TrimSpace(n.cfg.Backend), config.IndicatorBackendDesktop)
}

// post shows nt. Hyprland stacks overlays, so later notices dismiss the
// previous one first; desktop notices replace in place by ID.
func (n *Notifier) post(ctx context.Context, nt notice) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		if n.desktop() {
			return n.notifyDesktop(ctx, nt)
		}
		if !nt.opening {
			if err := hypr.Dismiss(ctx); err != nil {
				n.log("indicator dismiss failed", err)
			}
		}
		return hypr.Notify(ctx, hypr.Notice{Icon: nt.icon, TimeoutMS: nt.timeout, Color: nt.color, Text: nt.text})
	})
}

func (n *Notifier) notifyDesktop(ctx context.Context, nt notice) error {
	n.mu.Lock()
	replaceID := n.desktopID
	n.mu.Unlock()

	urgency := urgencyNormal
	if nt.critical {
		urgency = urgencyCritical
	}

	id, err := desktopNotify(ctx, desktopNotice{
		appName:   orDefault(n.cfg.DesktopAppName, "herguard"),
		replaceID: replaceID,
		summary:   nt.text,
		timeoutMS: nt.timeout,
		urgency:   urgency,
	})
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopID = id
	n.mu.Unlock()
	return nil
}

// dismissDesktop closes the tracked desktop notification, if any.
func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopID
	n.desktopID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

// playCue queues kind behind any cue already playing.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	n.cues.Add(1)
	go func() {
		defer n.cues.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), cueTimeout)
		defer cancel()
		if err := emitCue(ctx, kind, n.cfg); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

// log reports indicator failures at debug level; they never affect a cycle.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
