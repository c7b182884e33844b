// Package fsm defines the cycle lifecycle: capture, classification, and the
// optional escalation that ends in a sent emergency message.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateUploading  State = "uploading"
	StateClassified State = "classified"
	StateEscalating State = "escalating"
	StateSent       State = "sent"
	StateError      State = "error"
)

const (
	EventStart      Event = "start"
	EventStop       Event = "stop"
	EventCancel     Event = "cancel"
	EventClassified Event = "classified"
	EventEscalate   Event = "escalate"
	EventDismiss    Event = "dismiss"
	EventSent       Event = "sent"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

// edges holds every legal move except EventFail, which is legal everywhere.
var edges = map[State]map[Event]State{
	StateIdle:       {EventStart: StateRecording},
	StateRecording:  {EventStop: StateUploading, EventCancel: StateIdle},
	StateUploading:  {EventClassified: StateClassified},
	StateClassified: {EventEscalate: StateEscalating, EventDismiss: StateIdle},
	StateEscalating: {EventSent: StateSent},
	StateSent:       {EventReset: StateIdle},
	StateError:      {EventReset: StateIdle},
}

// Transition returns the state event leads to from current. On error the
// returned state is current, unchanged.
func Transition(current State, event Event) (State, error) {
	out, known := edges[current]
	if !known {
		return current, fmt.Errorf("unknown state %q", current)
	}
	if event == EventFail {
		return StateError, nil
	}
	next, ok := out[event]
	if !ok {
		return current, fmt.Errorf("invalid transition: %s --(%s)--> ?", current, event)
	}
	return next, nil
}

// Busy reports whether a cycle is past capture. Busy cycles accept no new
// user actions until they settle.
func Busy(state State) bool {
	switch state {
	case StateUploading, StateClassified, StateEscalating, StateSent:
		return true
	}
	return false
}
