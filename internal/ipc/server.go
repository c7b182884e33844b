package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers one request per connection until ctx ends or the listener
// closes. In-flight connections finish before Serve returns.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		conn, err := listener.Accept()
		switch {
		case err == nil:
		case errors.Is(err, net.ErrClosed), ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			defer conn.Close()
			answer(ctx, newLineCodec(conn), handler)
		}()
	}
}

func answer(ctx context.Context, codec lineCodec, handler Handler) {
	var req Request
	if err := codec.read(&req, "request"); err != nil {
		_ = codec.write(failure("", "%v", err))
		return
	}
	if req.Command == "" {
		_ = codec.write(failure(req.ID, "missing command"))
		return
	}

	resp := handler.Handle(ctx, req)
	resp.ID = req.ID
	_ = codec.write(resp)
}
