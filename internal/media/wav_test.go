package media

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func sineWave(n int, freq float64, rate int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return s
}

func TestWAVRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	const rate = 16000
	in := sineWave(rate/2, 440, rate)

	if err := WriteWAV(path, in, rate); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	out, gotRate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}

	if gotRate != rate {
		t.Errorf("sample rate = %d, want %d", gotRate, rate)
	}
	if len(out) != len(in) {
		t.Fatalf("sample count = %d, want %d", len(out), len(in))
	}

	// 16-bit quantization allows a small error.
	for i := range in {
		if math.Abs(out[i]-in[i]) > 1.0/(1<<14) {
			t.Fatalf("sample %d = %f, want %f", i, out[i], in[i])
		}
	}
}

func TestWriteWAVClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	if err := WriteWAV(path, []float64{2.0, -2.0, 0}, 16000); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	out, _, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if out[0] > 1 || out[1] < -1 {
		t.Errorf("out-of-range samples must be clamped, got %v", out)
	}
}

func TestDurationWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "len.wav")
	const rate = 8000
	if err := WriteWAV(path, make([]float64, rate*3), rate); err != nil {
		t.Fatal(err)
	}

	dur, err := Duration(path)
	if err != nil {
		t.Fatalf("Duration() error = %v", err)
	}
	if dur < 2900*time.Millisecond || dur > 3100*time.Millisecond {
		t.Errorf("duration = %s, want ~3s", dur)
	}
}

func TestDurationUnsupported(t *testing.T) {
	if _, err := Duration("meeting.webm"); err == nil {
		t.Error("Duration() should reject unsupported containers")
	}
}

func TestReadWAVMissing(t *testing.T) {
	if _, _, err := ReadWAV(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Error("ReadWAV() should fail for a missing file")
	}
}
