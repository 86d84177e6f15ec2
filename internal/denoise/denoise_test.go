package denoise

import (
	"context"
	"os"
	"testing"

	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/media"
	"meeting-secretary/internal/pipeline"
)

func newTestDenoiser(t *testing.T) (*Denoiser, *artifact.Store) {
	t.Helper()
	log := logger.New("error")
	store, err := artifact.NewStore(t.TempDir(), log)
	if err != nil {
		t.Fatal(err)
	}
	return New(store, log), store
}

func TestDenoiseEmptySignal(t *testing.T) {
	d, store := newTestDenoiser(t)

	key := store.Key("empty")
	path := store.Path(key, artifact.StageRaw, "wav")
	if err := media.WriteWAV(path, nil, 16000); err != nil {
		t.Fatal(err)
	}

	in := &pipeline.Artifact{Path: path, Key: key}
	_, err := d.Denoise(context.Background(), in, store.NewScope())
	if pipeline.KindOf(err) != pipeline.FailCleaning {
		t.Fatalf("error = %v, want cleaning failure for empty signal", err)
	}
}

func TestDenoiseMissingArtifact(t *testing.T) {
	d, store := newTestDenoiser(t)

	in := &pipeline.Artifact{Path: store.Path("nope", artifact.StageRaw, "wav"), Key: "nope"}
	_, err := d.Denoise(context.Background(), in, store.NewScope())
	if pipeline.KindOf(err) != pipeline.FailCleaning {
		t.Fatalf("error = %v, want cleaning failure", err)
	}
}

func TestDenoise(t *testing.T) {
	d, store := newTestDenoiser(t)
	ctx := context.Background()

	const rate = 16000
	samples := noisySine(rate*2, 440, rate, 0.05)

	key := store.Key("meeting")
	rawPath := store.Path(key, artifact.StageRaw, "wav")
	if err := media.WriteWAV(rawPath, samples, rate); err != nil {
		t.Fatal(err)
	}

	scope := store.NewScope()
	in := &pipeline.Artifact{Path: rawPath, Key: key}
	out, err := d.Denoise(ctx, in, scope)
	if err != nil {
		t.Fatalf("Denoise() error = %v", err)
	}

	if out.Path == rawPath {
		t.Fatal("cleaned artifact must live at a distinct path")
	}
	if out.Key != key {
		t.Errorf("Key = %q, want %q", out.Key, key)
	}

	// The raw artifact stays untouched; removing it is the runner's
	// responsibility.
	if _, err := os.Stat(rawPath); err != nil {
		t.Errorf("raw artifact must survive denoising: %v", err)
	}

	cleaned, gotRate, err := media.ReadWAV(out.Path)
	if err != nil {
		t.Fatalf("read cleaned artifact: %v", err)
	}
	if gotRate != rate {
		t.Errorf("sample rate = %d, want %d", gotRate, rate)
	}
	if len(cleaned) != len(samples) {
		t.Errorf("cleaned length = %d, want identical to input %d", len(cleaned), len(samples))
	}

	// Cleanup invariant: the cleaned artifact is scope-tracked.
	scope.ReleaseAll(ctx)
	if _, err := os.Stat(out.Path); !os.IsNotExist(err) {
		t.Error("cleaned artifact should be released with the scope")
	}
}
