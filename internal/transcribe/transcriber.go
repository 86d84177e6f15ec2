package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"meeting-secretary/internal/config"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/pipeline"
	"meeting-secretary/pkg/executor"
)

// Transcriber runs whisper.cpp over a local audio artifact and returns
// the transcript for the whole input in one call. The instance is
// created once at startup; concurrent calls share it through a bounded
// set of inference slots because the model cannot serve overlapping
// inference efficiently.
type Transcriber struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
	slots    *slots
}

func New(cfg *config.Config, exec executor.Executor, log logger.Logger) *Transcriber {
	return &Transcriber{
		cfg:      cfg,
		executor: exec,
		logger:   log,
		slots:    newSlots(cfg.Whisper.MaxConcurrent),
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := t.slots.acquire(ctx); err != nil {
		return "", pipeline.Fail(pipeline.FailTranscription, err)
	}
	defer t.slots.release()

	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	txtPath := outputPrefix + ".txt"

	// whisper may leave a partial sidecar behind even when it exits
	// with an error; remove it on every path out of here.
	defer func() {
		if err := os.Remove(txtPath); err != nil && !os.IsNotExist(err) {
			t.logger.Warn(ctx, "Failed to remove transcript file %s: %v", txtPath, err)
		}
	}()

	t.logger.Info(ctx, "Transcribing %s with %d threads", audioPath, t.cfg.Whisper.Threads)

	args := []string{
		"-m", t.cfg.Whisper.ModelPath,
		"-f", audioPath,
		"-l", t.cfg.Whisper.Language,
		"-t", strconv.Itoa(t.cfg.Whisper.Threads),
		"-otxt",
		"--output-file", outputPrefix,
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Whisper.BinaryPath, args...); err != nil {
		return "", pipeline.Failf(pipeline.FailTranscription, "whisper: %v", err)
	}

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", pipeline.Failf(pipeline.FailTranscription, "read transcript output: %v", err)
	}

	return strings.TrimSpace(string(data)), nil
}
