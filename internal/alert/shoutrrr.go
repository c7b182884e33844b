package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

const relayTitle = "herguard emergency"

// ShoutrrrRelay fans the emergency text out to shoutrrr service URLs.
type ShoutrrrRelay struct {
	urls   []string
	sender *router.ServiceRouter
}

// NewShoutrrrRelay validates urls and builds a quiet sender.
func NewShoutrrrRelay(urls []string, timeout time.Duration) (*ShoutrrrRelay, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one relay URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create relay sender: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrRelay{urls: slices.Clone(urls), sender: sender}, nil
}

// Count returns the number of configured relay URLs.
func (r *ShoutrrrRelay) Count() int {
	return len(r.urls)
}

// Relay sends message to every URL once. The router enforces its own timeout.
func (r *ShoutrrrRelay) Relay(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := stypes.Params{}
	params.SetTitle(relayTitle)

	var failed []error
	for _, err := range r.sender.Send(message, &params) {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("relay: %w", errors.Join(failed...))
}
