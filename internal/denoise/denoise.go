package denoise

import (
	"context"

	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/media"
	"meeting-secretary/internal/pipeline"
)

// Denoiser derives a cleaned artifact from a raw one by spectral noise
// reduction. The raw artifact is never mutated; removing it afterwards
// is the runner's call.
type Denoiser struct {
	store  *artifact.Store
	logger logger.Logger
}

func New(store *artifact.Store, log logger.Logger) *Denoiser {
	return &Denoiser{store: store, logger: log}
}

func (d *Denoiser) Denoise(ctx context.Context, in *pipeline.Artifact, scope *artifact.Scope) (*pipeline.Artifact, error) {
	samples, rate, err := media.ReadWAV(in.Path)
	if err != nil {
		return nil, pipeline.Fail(pipeline.FailCleaning, err)
	}
	if len(samples) == 0 {
		return nil, pipeline.Failf(pipeline.FailCleaning, "empty audio signal in %s", in.Path)
	}

	cleaned := reduceNoise(samples)

	outPath := d.store.Path(in.Key, artifact.StageCleaned, "wav")
	scope.Track(outPath)
	if err := media.WriteWAV(outPath, cleaned, rate); err != nil {
		return nil, pipeline.Fail(pipeline.FailCleaning, err)
	}

	d.logger.Debug(ctx, "Denoised %s -> %s (%d samples @ %d Hz)", in.Path, outPath, len(cleaned), rate)

	return &pipeline.Artifact{Path: outPath, Key: in.Key, Duration: in.Duration}, nil
}
