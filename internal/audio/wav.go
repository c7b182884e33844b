package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV replaces path with a 16kHz mono s16 WAV holding pcm.
// The file is written beside path and renamed so readers never see a partial file.
func writeWAV(path string, pcm []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create recording dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".recording-*.wav")
	if err != nil {
		return fmt.Errorf("create temp recording: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	enc := wav.NewEncoder(tmp, SampleRate, BitDepth, Channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           pcmToInts(pcm),
		Format:         &goaudio.Format{SampleRate: SampleRate, NumChannels: Channels},
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp recording: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("chmod recording: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace recording %q: %w", path, err)
	}
	return nil
}

// pcmToInts converts little-endian s16 bytes to samples. A trailing odd byte is dropped.
func pcmToInts(pcm []byte) []int {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	return samples
}
