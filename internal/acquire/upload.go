package acquire

import (
	"context"

	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/media"
	"meeting-secretary/internal/pipeline"
)

// stageSource marks the uploaded container before PCM conversion. It is
// released as soon as the converted raw artifact exists.
const stageSource = "_src"

func (a *Acquirer) acquireUpload(ctx context.Context, src pipeline.Source, scope *artifact.Scope) (*pipeline.Artifact, error) {
	if src.ID == "" {
		return nil, pipeline.Failf(pipeline.FailValidation, "upload source has no identifier")
	}

	// Keying by the source identifier makes repeated delivery of the
	// same file reuse the same slot instead of piling up duplicates.
	key := a.store.Key(src.ID)

	ext := src.Ext
	if ext == "" {
		ext = "bin"
	}

	srcPath, err := a.store.Put(key, stageSource, ext, src.Payload)
	if err != nil {
		return nil, pipeline.Fail(pipeline.FailAcquisition, err)
	}
	scope.Track(srcPath)
	a.logger.Debug(ctx, "Stored upload %s as %s", src.ID, srcPath)

	// Gate on duration before the ffmpeg decode when the container can
	// be probed cheaply.
	if ext == "mp3" || ext == "wav" {
		dur, err := media.Duration(srcPath)
		if err != nil {
			return nil, pipeline.Failf(pipeline.FailAcquisition, "probe upload duration: %v", err)
		}
		if dur > a.maxDuration() {
			return nil, pipeline.Failf(pipeline.FailAcquisition,
				"recording is %s, exceeds the %s ceiling", dur.Round(0), a.maxDuration())
		}
	}

	rawPath := a.store.Path(key, artifact.StageRaw, "wav")
	scope.Track(rawPath)

	args := []string{
		"-i", srcPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		rawPath,
	}
	if _, err := a.executor.Execute(ctx, a.cfg.Tools.FFmpegPath, args...); err != nil {
		return nil, pipeline.Failf(pipeline.FailAcquisition, "decode upload to pcm: %v", err)
	}
	scope.Release(ctx, srcPath)

	dur, err := media.Duration(rawPath)
	if err != nil {
		return nil, pipeline.Failf(pipeline.FailAcquisition, "probe raw artifact: %v", err)
	}
	if dur > a.maxDuration() {
		return nil, pipeline.Failf(pipeline.FailAcquisition,
			"recording is %s, exceeds the %s ceiling", dur.Round(0), a.maxDuration())
	}

	return &pipeline.Artifact{Path: rawPath, Key: key, Duration: dur}, nil
}
