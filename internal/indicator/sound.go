package indicator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/jfreymuth/pulse"
	"github.com/rbright/herguard/internal/config"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueStop
	cueComplete
	cueCancel
	cueAlert
)

const (
	synthRate = 16000
	toneGap   = 22 * time.Millisecond
	rampMax   = 5 * time.Millisecond
)

type tone struct {
	hz     float64
	length time.Duration
	gain   float64
}

// cue pairs the user-configurable file with the built-in fallback tones.
type cue struct {
	file  func(config.IndicatorConfig) string
	tones []tone
}

var cues = map[cueKind]cue{
	cueStart: {
		file:  func(c config.IndicatorConfig) string { return c.SoundStartFile },
		tones: []tone{{880, 70 * time.Millisecond, 0.18}, {1175, 70 * time.Millisecond, 0.18}},
	},
	cueStop: {
		file:  func(c config.IndicatorConfig) string { return c.SoundStopFile },
		tones: []tone{{620, 120 * time.Millisecond, 0.18}},
	},
	cueComplete: {
		file:  func(c config.IndicatorConfig) string { return c.SoundCompleteFile },
		tones: []tone{{740, 65 * time.Millisecond, 0.18}, {988, 90 * time.Millisecond, 0.18}},
	},
	cueCancel: {
		file:  func(c config.IndicatorConfig) string { return c.SoundCancelFile },
		tones: []tone{{480, 75 * time.Millisecond, 0.18}, {360, 90 * time.Millisecond, 0.18}},
	},
	cueAlert: {
		file: func(c config.IndicatorConfig) string { return c.SoundAlertFile },
		tones: []tone{
			{1320, 110 * time.Millisecond, 0.22},
			{990, 110 * time.Millisecond, 0.22},
			{1320, 110 * time.Millisecond, 0.22},
		},
	},
}

// clip is mono or stereo 16-bit PCM ready for playback.
type clip struct {
	samples  []int16
	rate     int
	channels int
}

// emitCue plays the configured cue file, or the synthesized tones when the
// file is unset or unreadable.
func emitCue(ctx context.Context, kind cueKind, cfg config.IndicatorConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	spec, ok := cues[kind]
	if !ok {
		return nil
	}

	if path := cuePath(kind, cfg); path != "" {
		if loaded, err := loadCueFile(path); err == nil {
			return play(ctx, loaded)
		}
	}
	return play(ctx, clip{samples: synthesize(spec.tones), rate: synthRate, channels: 1})
}

func cuePath(kind cueKind, cfg config.IndicatorConfig) string {
	spec, ok := cues[kind]
	if !ok {
		return ""
	}
	return config.ExpandUserPath(strings.TrimSpace(spec.file(cfg)))
}

// loadCueFile decodes a 16-bit PCM WAV with one or two channels.
func loadCueFile(path string) (clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return clip{}, fmt.Errorf("open cue file %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return clip{}, fmt.Errorf("cue file %q is not a PCM WAV", path)
	}
	if dec.BitDepth != 16 || dec.NumChans < 1 || dec.NumChans > 2 {
		return clip{}, fmt.Errorf("cue file %q: want 16-bit mono or stereo, got %d-bit %d-channel", path, dec.BitDepth, dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return clip{}, fmt.Errorf("decode cue file %q: %w", path, err)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return clip{samples: samples, rate: int(dec.SampleRate), channels: int(dec.NumChans)}, nil
}

func play(ctx context.Context, c clip) error {
	if len(c.samples) == 0 {
		return nil
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("herguard"),
		pulse.ClientApplicationIconName("dialog-warning"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	layout := pulse.PlaybackMono
	if c.channels == 2 {
		layout = pulse.PlaybackStereo
	}

	stream, err := client.NewPlayback(
		pulse.Int16Reader(c.reader()),
		layout,
		pulse.PlaybackSampleRate(c.rate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("herguard cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil && !errors.Is(err, pulse.EndOfData) {
		return fmt.Errorf("play cue stream: %w", err)
	}
	return nil
}

// reader feeds the clip to pulse once, then reports EndOfData.
func (c clip) reader() func([]int16) (int, error) {
	rest := c.samples
	return func(buf []int16) (int, error) {
		n := copy(buf, rest)
		rest = rest[n:]
		if len(rest) == 0 {
			return n, pulse.EndOfData
		}
		return n, nil
	}
}

// synthesize renders tones back to back with a short silence between them.
func synthesize(tones []tone) []int16 {
	gap := sampleCount(toneGap)
	var pcm []int16
	for i, t := range tones {
		if i > 0 {
			pcm = append(pcm, make([]int16, gap)...)
		}
		pcm = append(pcm, t.render()...)
	}
	return pcm
}

func (t tone) render() []int16 {
	n := sampleCount(t.length)
	if n <= 0 || t.hz <= 0 || t.gain <= 0 {
		return nil
	}

	ramp := max(min(n/10, sampleCount(rampMax)), 1)
	pcm := make([]int16, n)
	for i := range pcm {
		phase := 2 * math.Pi * t.hz * float64(i) / synthRate
		pcm[i] = int16(math.Round(math.Sin(phase) * t.gain * fade(i, n, ramp) * math.MaxInt16))
	}
	return pcm
}

// fade is a linear attack/release envelope over ramp samples at each edge.
func fade(i, n, ramp int) float64 {
	edge := min(i, n-1-i)
	if edge >= ramp {
		return 1
	}
	return float64(edge) / float64(ramp)
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * synthRate))
}
