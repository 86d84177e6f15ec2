package media

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcm16Scale = 1 << 15

// ReadWAV decodes a PCM WAV artifact into float64 samples in [-1, 1).
// Multi-channel input is downmixed to mono by averaging, matching the
// mono layout the acquisition stage produces.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open wav %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav %s: %w", path, err)
	}

	rate := buf.Format.SampleRate
	ch := buf.Format.NumChannels
	if ch < 1 {
		ch = 1
	}

	scale := float64(pcm16Scale)
	if buf.SourceBitDepth > 0 {
		scale = float64(int(1) << (buf.SourceBitDepth - 1))
	}

	frames := len(buf.Data) / ch
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		samples[i] = sum / float64(ch) / scale
	}

	return samples, rate, nil
}

// WriteWAV encodes float64 samples as 16-bit mono PCM.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		v := int(s * pcm16Scale)
		if v > pcm16Scale-1 {
			v = pcm16Scale - 1
		}
		if v < -pcm16Scale {
			v = -pcm16Scale
		}
		buf.Data[i] = v
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("encode wav %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize wav %s: %w", path, err)
	}
	return f.Close()
}
