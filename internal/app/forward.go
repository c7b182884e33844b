package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbright/herguard/internal/ipc"
)

const forwardTimeout = 220 * time.Millisecond

// tryForward hands command to a running owner. handled is false only when
// no owner is listening; an owner that answers with an error is handled.
func tryForward(ctx context.Context, socketPath string, command string) (resp ipc.Response, handled bool, err error) {
	resp, err = ipc.Send(ctx, socketPath, ipc.NewRequest(command), forwardTimeout)
	switch {
	case err == nil && resp.OK:
		return resp, true, nil
	case err == nil:
		return resp, true, errors.New(resp.Error)
	case ipc.NoOwner(err):
		return ipc.Response{}, false, nil
	default:
		return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
	}
}

// forwarding builds a handler for commands that act on an owner's cycle.
// With no owner there is nothing to stop or discard, so the command is a
// no-op and succeeds.
func forwarding(command string) handler {
	return func(r Runner, ctx context.Context, _ invocation) int {
		socketPath, err := ipc.RuntimeSocketPath()
		if err != nil {
			r.errorf("%v", err)
			return exitError
		}

		resp, handled, err := tryForward(ctx, socketPath, command)
		if !handled {
			fmt.Fprintf(r.Stdout, "no active %s session\n", binaryName)
			return exitOK
		}
		return r.reportForwarded(resp, err)
	}
}

// commandStatus prints the owner's state, or idle when nobody owns a cycle.
func (r Runner) commandStatus(ctx context.Context, _ invocation) int {
	state := "idle"
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, ipc.CommandStatus)
		if handled && err != nil {
			r.errorf("%v", err)
			return exitError
		}
		if resp.State != "" {
			state = resp.State
		}
	}
	fmt.Fprintln(r.Stdout, state)
	return exitOK
}

func (r Runner) reportForwarded(resp ipc.Response, err error) int {
	if err != nil {
		r.errorf("%v", err)
		return exitError
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return exitOK
}
