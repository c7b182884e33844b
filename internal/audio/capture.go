package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	// 20ms of 16kHz mono s16.
	fragmentSizeBytes = 640
	// Frames past this size are dropped; the recording keeps the first two minutes.
	maxCaptureBytes = SampleRate * Channels * (BitDepth / 8) * 120
)

// Capture buffers PCM from one Pulse source until stopped.
type Capture struct {
	device Device
	client *pulse.Client
	stream *pulse.RecordStream

	stopOnce sync.Once

	mu        sync.Mutex
	pcm       bytes.Buffer
	limit     int
	truncated bool
	stopped   bool
	detach    func() bool
}

// StartCapture opens a 16kHz mono s16 record stream on the selected source.
// Cancelling ctx stops the capture.
func StartCapture(ctx context.Context, selected Device) (*Capture, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	c := newCapture(selected, maxCaptureBytes)
	c.client = client

	stream, err := client.NewRecord(
		pulse.NewWriter(frameSink(c.write), pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(fragmentSizeBytes),
		pulse.RecordMediaName("herguard capture"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open record stream on %q: %w", selected.ID, err)
	}
	c.stream = stream
	stream.Start()

	detach := context.AfterFunc(ctx, func() { _ = c.Stop() })
	c.mu.Lock()
	c.detach = detach
	c.mu.Unlock()

	return c, nil
}

func newCapture(device Device, limit int) *Capture {
	return &Capture{device: device, limit: limit}
}

// Device returns the source being recorded.
func (c *Capture) Device() Device {
	return c.device
}

// BytesCaptured reports the buffered PCM size.
func (c *Capture) BytesCaptured() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(c.pcm.Len())
}

// RawPCM returns a copy of the buffered PCM.
func (c *Capture) RawPCM() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.pcm.Bytes())
}

// Truncated reports whether frames were dropped at the size limit.
func (c *Capture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

// Stop closes the stream and the Pulse connection. Safe to call more than once.
func (c *Capture) Stop() error {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		detach := c.detach
		c.mu.Unlock()

		if detach != nil {
			detach()
		}
		if c.stream != nil {
			c.stream.Stop()
			c.stream.Close()
		}
		if c.client != nil {
			c.client.Close()
		}
	})
	return nil
}

// write appends one Pulse frame. After Stop it reports io.EOF so the stream drains.
func (c *Capture) write(frame []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return 0, io.EOF
	}

	n := len(frame)
	if room := c.limit - c.pcm.Len(); n > room {
		frame = frame[:max(room, 0)]
		c.truncated = true
	}
	c.pcm.Write(frame)
	return n, nil
}

// frameSink adapts a function to io.Writer for pulse.NewWriter.
type frameSink func([]byte) (int, error)

func (f frameSink) Write(b []byte) (int, error) {
	return f(b)
}
