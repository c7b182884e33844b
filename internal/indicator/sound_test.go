package indicator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/pulse"
	"github.com/rbright/herguard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEveryCueHasFallbackTones(t *testing.T) {
	for _, kind := range []cueKind{cueStart, cueStop, cueComplete, cueCancel, cueAlert} {
		require.NotEmpty(t, synthesize(cues[kind].tones), "cue %d", kind)
	}
}

func TestAlertCueIsLongestCue(t *testing.T) {
	alert := len(synthesize(cues[cueAlert].tones))
	for _, kind := range []cueKind{cueStart, cueStop, cueComplete, cueCancel} {
		require.Greater(t, alert, len(synthesize(cues[kind].tones)))
	}
}

func TestSynthesizeInsertsGapBetweenTones(t *testing.T) {
	a := tone{hz: 440, length: 10 * time.Millisecond, gain: 0.2}
	pcm := synthesize([]tone{a, a})
	require.Len(t, pcm, 2*sampleCount(10*time.Millisecond)+sampleCount(toneGap))
	require.Empty(t, synthesize(nil))
}

func TestToneRenderLengthAndEnvelope(t *testing.T) {
	pcm := tone{hz: 440, length: 100 * time.Millisecond, gain: 0.2}.render()
	require.Len(t, pcm, sampleCount(100*time.Millisecond))
	require.Zero(t, pcm[0])
	require.Zero(t, pcm[len(pcm)-1])

	require.Empty(t, tone{hz: 0, length: time.Second, gain: 0.2}.render())
	require.Empty(t, tone{hz: 440, length: 0, gain: 0.2}.render())
	require.Empty(t, tone{hz: 440, length: time.Second, gain: 0}.render())
}

func TestFade(t *testing.T) {
	require.Equal(t, 0.0, fade(0, 100, 10))
	require.Equal(t, 0.5, fade(5, 100, 10))
	require.Equal(t, 1.0, fade(50, 100, 10))
	require.Equal(t, 0.0, fade(99, 100, 10))
}

func TestCuePathSelectsConfiguredFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.IndicatorConfig{
		SoundStartFile: "/tmp/start.wav",
		SoundAlertFile: "~/sounds/alert.wav",
		SoundStopFile:  "   ",
	}
	require.Equal(t, "/tmp/start.wav", cuePath(cueStart, cfg))
	require.Equal(t, filepath.Join(home, "sounds", "alert.wav"), cuePath(cueAlert, cfg))
	require.Empty(t, cuePath(cueStop, cfg))
	require.Empty(t, cuePath(cueKind(99), cfg))
}

func TestLoadCueFileDecodesStereoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alert.wav")
	writeCueWAV(t, path, 16, 2, []int{100, -100, 200, -200})

	loaded, err := loadCueFile(path)
	require.NoError(t, err)
	require.Equal(t, 44100, loaded.rate)
	require.Equal(t, 2, loaded.channels)
	require.Equal(t, []int16{100, -100, 200, -200}, loaded.samples)
}

func TestLoadCueFileRejectsUnsupportedInput(t *testing.T) {
	dir := t.TempDir()

	_, err := loadCueFile(filepath.Join(dir, "missing.wav"))
	require.ErrorContains(t, err, "open cue file")

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not riff"), 0o600))
	_, err = loadCueFile(garbage)
	require.ErrorContains(t, err, "not a PCM WAV")

	wide := filepath.Join(dir, "wide.wav")
	writeCueWAV(t, wide, 24, 1, []int{1, 2, 3})
	_, err = loadCueFile(wide)
	require.ErrorContains(t, err, "want 16-bit")
}

func TestClipReaderEndsAfterLastSample(t *testing.T) {
	read := clip{samples: []int16{1, 2, 3}}.reader()
	buf := make([]int16, 2)

	n, err := read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = read(buf)
	require.ErrorIs(t, err, pulse.EndOfData)
	require.Equal(t, 1, n)
	require.Equal(t, int16(3), buf[0])
}

func TestPlayEmptyClipIsNoop(t *testing.T) {
	require.NoError(t, play(context.Background(), clip{}))
}

func TestEmitCueRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emitCue(ctx, cueStart, config.IndicatorConfig{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmitCueUnknownKindIsNoop(t *testing.T) {
	require.NoError(t, emitCue(context.Background(), cueKind(99), config.IndicatorConfig{}))
}

func writeCueWAV(t *testing.T, path string, bitDepth, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, bitDepth, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: 44100, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
}
