// Package ipc carries newline-delimited JSON commands between herguard
// invocations and the process that owns the active cycle.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Commands accepted by a session owner.
const (
	CommandStatus = "status"
	CommandToggle = "toggle"
	CommandStop   = "stop"
	CommandCancel = "cancel"
)

// Request is one command line sent to the owner socket.
type Request struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
}

// Response reports the owner's cycle state after handling a request.
type Response struct {
	ID      string `json:"id,omitempty"`
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Cycle   string `json:"cycle,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewRequest builds a request with a fresh correlation ID.
func NewRequest(command string) Request {
	return Request{ID: uuid.NewString(), Command: command}
}

func failure(id string, format string, args ...any) Response {
	return Response{ID: id, Error: fmt.Sprintf(format, args...)}
}

// lineCodec frames one JSON value per line over a stream.
type lineCodec struct {
	r *bufio.Reader
	w io.Writer
}

func newLineCodec(rw io.ReadWriter) lineCodec {
	return lineCodec{r: bufio.NewReader(rw), w: rw}
}

// write emits v followed by a newline.
func (c lineCodec) write(v any) error {
	return json.NewEncoder(c.w).Encode(v)
}

// read consumes exactly one line and decodes it into v. Read and decode
// failures are reported with distinct prefixes so callers can tell a
// dropped peer from a malformed one.
func (c lineCodec) read(v any, what string) error {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}
