package acquire

import (
	"context"
	"time"

	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/config"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/pipeline"
	"meeting-secretary/pkg/executor"
)

// Acquirer turns a pipeline source into a raw PCM artifact in the temp
// store. Uploads are streamed in and normalized with ffmpeg; remote
// videos go through yt-dlp. The duration ceiling gates both paths
// before any downstream stage runs.
type Acquirer struct {
	cfg      *config.Config
	store    *artifact.Store
	executor executor.Executor
	logger   logger.Logger
}

func New(cfg *config.Config, store *artifact.Store, exec executor.Executor, log logger.Logger) *Acquirer {
	return &Acquirer{cfg: cfg, store: store, executor: exec, logger: log}
}

func (a *Acquirer) Acquire(ctx context.Context, src pipeline.Source, scope *artifact.Scope) (*pipeline.Artifact, error) {
	switch src.Kind {
	case pipeline.SourceUpload:
		return a.acquireUpload(ctx, src, scope)
	case pipeline.SourceRemoteVideo:
		return a.acquireRemote(ctx, src, scope)
	default:
		return nil, pipeline.Failf(pipeline.FailValidation, "unsupported source kind: %v", src.Kind)
	}
}

func (a *Acquirer) maxDuration() time.Duration {
	return time.Duration(a.cfg.Acquire.MaxDurationMinutes) * time.Minute
}
