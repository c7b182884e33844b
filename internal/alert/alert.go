// Package alert decides when a detected emotion warrants an emergency message and sends it.
package alert

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/rbright/herguard/internal/location"
	"github.com/rbright/herguard/internal/permission"
)

// Emotion labels produced by the classifier.
const (
	LabelNeutral  = "Neutral"
	LabelHappy    = "Happy"
	LabelSad      = "Sad"
	LabelAngry    = "Angry"
	LabelFear     = "Fear"
	LabelSurprise = "Surprise"
)

const (
	messagePrefix   = "Emergency! My location: "
	mapsURLPrefix   = "https://maps.google.com/?q="
	FallbackMessage = "Emergency! Unable to fetch location."
)

// ShouldEscalate reports whether label is a distress emotion. Matching is exact.
func ShouldEscalate(label string) bool {
	return label == LabelFear || label == LabelAngry
}

// ComposeMessage renders the emergency text for fix, or the fallback when fix is nil.
func ComposeMessage(fix *location.Fix) string {
	if fix == nil {
		return FallbackMessage
	}
	return messagePrefix + mapsURLPrefix + formatCoordinate(fix.Latitude) + "," + formatCoordinate(fix.Longitude)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Sender delivers the emergency message to the backend.
type Sender interface {
	SendEmergency(ctx context.Context, message string) error
}

// Relay forwards the emergency message to an additional channel. Failures never
// change the dispatch outcome.
type Relay interface {
	Relay(ctx context.Context, message string) error
}

// Outcome is the result of one dispatch.
type Outcome struct {
	Message     string
	Fix         *location.Fix
	LocationErr error
	SendErr     error
	RelayErrs   []error
}

// Sent reports whether the backend accepted the message.
func (o Outcome) Sent() bool {
	return o.SendErr == nil
}

// LocationDenied reports whether the location read failed on permissions.
func (o Outcome) LocationDenied() bool {
	return errors.Is(o.LocationErr, permission.ErrPermissionDenied)
}

// Dispatcher composes and sends emergency messages.
type Dispatcher struct {
	location location.Provider
	sender   Sender
	relays   []Relay
	logger   *slog.Logger
}

// NewDispatcher wires a location source, the backend sender, and optional relays.
func NewDispatcher(provider location.Provider, sender Sender, logger *slog.Logger, relays ...Relay) *Dispatcher {
	if provider == nil {
		provider = location.NoneProvider{}
	}
	return &Dispatcher{
		location: provider,
		sender:   sender,
		relays:   relays,
		logger:   logger,
	}
}

// Dispatch reads the last known location, sends one message, and reports the outcome.
// There is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context) Outcome {
	var out Outcome

	fix, err := d.location.LastKnown(ctx)
	if err != nil {
		out.LocationErr = err
		fix = nil
		d.log().Warn("last known location unavailable", "error", err.Error())
	}
	out.Fix = fix
	out.Message = ComposeMessage(fix)

	out.SendErr = d.sender.SendEmergency(ctx, out.Message)

	for _, relay := range d.relays {
		if relayErr := relay.Relay(ctx, out.Message); relayErr != nil {
			out.RelayErrs = append(out.RelayErrs, relayErr)
			d.log().Warn("emergency relay failed", "error", relayErr.Error())
		}
	}

	return out
}

func (d *Dispatcher) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}
