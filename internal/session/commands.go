package session

import (
	"context"
	"fmt"

	"github.com/rbright/herguard/internal/fsm"
	"github.com/rbright/herguard/internal/ipc"
)

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

func (a action) String() string {
	switch a {
	case actionStop:
		return "stop"
	case actionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Handle answers IPC requests from other invocations while Run is active.
// Toggle from a second invocation means stop.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	var resp ipc.Response
	switch req.Command {
	case ipc.CommandStatus:
		resp = ipc.Response{OK: true, State: string(c.State()), Message: "status"}
	case ipc.CommandToggle, ipc.CommandStop:
		resp = c.request(actionStop, req.Command)
	case ipc.CommandCancel:
		resp = c.request(actionCancel, req.Command)
	default:
		resp = ipc.Response{State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
	resp.Cycle = c.CycleID()
	return resp
}

// request queues a for Run. Only a recording cycle accepts actions. The
// first action of a cycle wins: repeating it is acknowledged, while a
// different one is refused and names the action that will actually run.
func (c *Controller) request(a action, verb string) ipc.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.state
	resp := ipc.Response{State: string(state)}

	switch {
	case fsm.Busy(state):
		resp.Error = fmt.Sprintf("busy: cycle is %s", state)
	case state != fsm.StateRecording:
		resp.Error = fmt.Sprintf("cannot %s from state %s", verb, state)
	case c.pending == a:
		resp.OK = true
		resp.Message = a.String() + " already requested"
	case c.pending != 0:
		resp.Error = fmt.Sprintf("cannot %s: %s already requested", verb, c.pending)
	default:
		select {
		case c.actions <- a:
			c.pending = a
			resp.OK = true
			resp.Message = a.String() + " requested"
		default:
			resp.Error = fmt.Sprintf("cannot %s: another action is queued", verb)
		}
	}
	return resp
}
