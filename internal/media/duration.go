package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/tcolgate/mp3"
)

// Duration probes the playable length of a local audio file. WAV is
// read from the header; MP3 is measured by decoding frame headers,
// since MP3 containers carry no reliable duration field.
func Duration(path string) (time.Duration, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wavDuration(path)
	case ".mp3":
		return mp3Duration(path)
	default:
		return 0, fmt.Errorf("unsupported audio container: %s", filepath.Ext(path))
	}
}

func wavDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dur, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("probe wav duration %s: %w", path, err)
	}
	return dur, nil
}

func mp3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := mp3.NewDecoder(f)
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("decode mp3 frames %s: %w", path, err)
		}
		total += frame.Duration()
	}
	return total, nil
}
