package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pcm       []byte
	device    Device
	stopped   int
	truncated bool
}

func (f *fakeSource) Stop() error          { f.stopped++; return nil }
func (f *fakeSource) RawPCM() []byte       { return append([]byte(nil), f.pcm...) }
func (f *fakeSource) BytesCaptured() int64 { return int64(len(f.pcm)) }
func (f *fakeSource) Truncated() bool      { return f.truncated }
func (f *fakeSource) Device() Device       { return f.device }

func newTestRecorder(t *testing.T, sources ...*fakeSource) (*Recorder, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nested", "recorded_audio.wav")
	rec := NewRecorder(path, "default", "default", nil)
	rec.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	next := 0
	rec.start = func(context.Context) (pcmSource, Selection, error) {
		if next >= len(sources) {
			return nil, Selection{}, errors.New("no more fake sources")
		}
		src := sources[next]
		next++
		return src, Selection{Device: src.device}, nil
	}
	return rec, path
}

func TestRecorderStopWithoutStartIsNoop(t *testing.T) {
	rec, path := newTestRecorder(t)

	recording, err := rec.Stop()
	require.NoError(t, err)
	require.Nil(t, recording)

	_, statErr := os.Stat(path)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRecorderStartStopWritesWAV(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80, 0xFF, 0x7F}
	src := &fakeSource{pcm: pcm, device: Device{ID: "mic", Description: "USB Mic"}}
	rec, path := newTestRecorder(t, src)

	require.NoError(t, rec.Start(context.Background()))
	require.True(t, rec.Active())

	recording, err := rec.Stop()
	require.NoError(t, err)
	require.NotNil(t, recording)
	require.False(t, rec.Active())
	require.Equal(t, 1, src.stopped)
	require.Equal(t, path, recording.Path)
	require.Equal(t, int64(len(pcm)), recording.BytesCaptured)
	require.Equal(t, "mic", recording.Device.ID)
	require.Equal(t, 2026, recording.StartedAt.Year())
	require.Equal(t, 250*time.Microsecond, recording.Duration)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	require.Equal(t, uint32(SampleRate), dec.SampleRate)
	require.Equal(t, uint16(Channels), dec.NumChans)
	require.Equal(t, uint16(BitDepth), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, []int{1, -1, -32768, 32767}, buf.Data)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
}

func TestRecorderEmptyCaptureStillWritesValidFile(t *testing.T) {
	rec, path := newTestRecorder(t, &fakeSource{})

	require.NoError(t, rec.Start(context.Background()))
	recording, err := rec.Stop()
	require.NoError(t, err)
	require.Zero(t, recording.Duration)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	require.True(t, wav.NewDecoder(f).IsValidFile())
}

func TestRecorderOverwritesPreviousRecording(t *testing.T) {
	first := &fakeSource{pcm: make([]byte, 3200)}
	second := &fakeSource{pcm: []byte{0x02, 0x00}}
	rec, path := newTestRecorder(t, first, second)

	require.NoError(t, rec.Start(context.Background()))
	_, err := rec.Stop()
	require.NoError(t, err)
	firstStat, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, rec.Start(context.Background()))
	_, err = rec.Stop()
	require.NoError(t, err)
	secondStat, err := os.Stat(path)
	require.NoError(t, err)

	require.Less(t, secondStat.Size(), firstStat.Size())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRecorderRejectsSecondStart(t *testing.T) {
	rec, _ := newTestRecorder(t, &fakeSource{}, &fakeSource{})

	require.NoError(t, rec.Start(context.Background()))
	err := rec.Start(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRecording)
}

func TestRecorderStartFailureWrapsDeviceUnavailable(t *testing.T) {
	rec, _ := newTestRecorder(t)

	err := rec.Start(context.Background())
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	require.Contains(t, err.Error(), "no more fake sources")
	require.False(t, rec.Active())
}

func TestRecorderCancelDiscardsWithoutWriting(t *testing.T) {
	src := &fakeSource{pcm: []byte{1, 0}}
	rec, path := newTestRecorder(t, src)

	require.NoError(t, rec.Cancel())

	require.NoError(t, rec.Start(context.Background()))
	require.NoError(t, rec.Cancel())
	require.Equal(t, 1, src.stopped)
	require.False(t, rec.Active())

	_, statErr := os.Stat(path)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	recording, err := rec.Stop()
	require.NoError(t, err)
	require.Nil(t, recording)
}

func TestPCMToIntsDropsTrailingByte(t *testing.T) {
	require.Equal(t, []int{1}, pcmToInts([]byte{1, 0, 7}))
	require.Empty(t, pcmToInts(nil))
}

func TestRecorderReportsTruncatedCapture(t *testing.T) {
	src := &fakeSource{pcm: make([]byte, 64), truncated: true}
	rec, _ := newTestRecorder(t, src)

	require.NoError(t, rec.Start(context.Background()))
	recording, err := rec.Stop()
	require.NoError(t, err)
	require.True(t, recording.Truncated)
	require.Equal(t, int64(64), recording.BytesCaptured)
}
