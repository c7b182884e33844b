package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/herguard/internal/alert"
	"github.com/rbright/herguard/internal/fsm"
)

// Run executes one cycle: capture until stop or cancel, then upload,
// then escalate a distress label. It always leaves the controller idle.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{CycleID: uuid.NewString(), StartedAt: time.Now()}
	c.mu.Lock()
	c.cycleID = result.CycleID
	c.pending = 0
	c.mu.Unlock()

	c.record(ctx, &result)

	result.State = c.State()
	result.FinishedAt = time.Now()
	return result
}

func (c *Controller) record(ctx context.Context, result *Result) {
	if err := c.gate.RequireMicrophone(ctx); err != nil {
		c.indicator.ShowError(ctx, NoticePermissionDenied)
		result.Err = err
		return
	}
	if err := c.transition(fsm.EventStart); err != nil {
		result.Err = err
		return
	}
	c.indicator.ShowRecording(ctx)

	if err := c.analyze.Start(ctx); err != nil {
		c.abort(result, err, NoticeStartFailed)
		return
	}

	var next action
	select {
	case <-ctx.Done():
		c.discard()
		c.indicator.CueCancel(context.Background())
		c.abort(result, ctx.Err(), NoticeCancelled)
		return
	case next = <-c.actions:
	}

	switch next {
	case actionStop:
		c.upload(ctx, result)
	case actionCancel:
		c.discard()
		c.indicator.CueCancel(context.Background())
		c.hide()
		_ = c.transition(fsm.EventCancel)
		result.Cancelled = true
	default:
		c.discard()
		c.abort(result, fmt.Errorf("unknown action %d", next), "")
	}
}

// upload finalizes the capture, classifies it, and dismisses or escalates.
func (c *Controller) upload(ctx context.Context, result *Result) {
	if err := c.transition(fsm.EventStop); err != nil {
		c.discard()
		c.abort(result, err, "")
		return
	}
	c.indicator.ShowUploading(ctx)

	analysis, err := c.analyze.StopAndClassify(ctx)
	c.indicator.CueStop(context.Background())
	result.absorb(analysis)
	if err != nil {
		c.abort(result, err, noticeUploadFailedPrefix+err.Error())
		return
	}

	result.Label, result.Detail = analysis.Label, analysis.Detail
	if err := c.transition(fsm.EventClassified); err != nil {
		c.abort(result, err, "")
		return
	}
	c.indicator.ShowEmotion(ctx, analysis.Label)

	if alert.ShouldEscalate(analysis.Label) {
		c.raise(ctx, result)
		return
	}
	c.indicator.CueComplete(context.Background())
	if err := c.transition(fsm.EventDismiss); err != nil {
		c.abort(result, err, "")
	}
}

// raise sends exactly one emergency message for the classified label.
func (c *Controller) raise(ctx context.Context, result *Result) {
	if err := c.transition(fsm.EventEscalate); err != nil {
		c.abort(result, err, "")
		return
	}
	result.Escalated = true

	outcome := c.escalate.Dispatch(ctx)
	result.AlertMessage = outcome.Message
	result.LocationErr = outcome.LocationErr
	if outcome.LocationDenied() {
		c.indicator.ShowError(context.Background(), NoticeLocationDenied)
	}

	if !outcome.Sent() {
		c.indicator.ShowError(context.Background(), noticeAlertFailedPrefix+outcome.SendErr.Error())
		c.reset()
		result.AlertErr = outcome.SendErr
		return
	}

	result.AlertSent = true
	c.indicator.CueAlert(context.Background())
	c.indicator.ShowAlertSent(context.Background())
	_ = c.transition(fsm.EventSent)
	_ = c.transition(fsm.EventReset)
}

// abort records err, shows notice when set, and returns to idle.
func (c *Controller) abort(result *Result, err error, notice string) {
	if notice != "" {
		c.indicator.ShowError(context.Background(), notice)
	}
	c.reset()
	result.Err = err
}

// reset forces the machine through error back to idle.
func (c *Controller) reset() {
	_ = c.transition(fsm.EventFail)
	_ = c.transition(fsm.EventReset)
}

// discard drops any in-progress capture.
func (c *Controller) discard() {
	_ = c.analyze.Cancel(context.Background())
}

func (c *Controller) hide() {
	ctx, cancel := context.WithTimeout(context.Background(), hideTimeout)
	defer cancel()
	c.indicator.Hide(ctx)
}
