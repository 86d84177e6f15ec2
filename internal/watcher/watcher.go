package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/pipeline"
	"meeting-secretary/internal/protocol"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
	".opus": true,
}

// Watcher is the drop-folder intake: audio files appearing in the
// inbox run through the same pipeline as uploads, and the protocol
// lands in the outbox as text plus a document.
type Watcher struct {
	inbox  string
	outbox string
	runner *pipeline.Runner
	logger logger.Logger

	fs *fsnotify.Watcher
	wg sync.WaitGroup
}

func New(inbox, outbox string, runner *pipeline.Runner, log logger.Logger) (*Watcher, error) {
	for _, dir := range []string{inbox, outbox} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(inbox); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", inbox, err)
	}

	return &Watcher{inbox: inbox, outbox: outbox, runner: runner, logger: log, fs: fs}, nil
}

// Start blocks until ctx is cancelled, handling each new audio file on
// its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching inbox: %s", w.inbox)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !audioExts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			path := event.Name
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.handle(ctx, path)
			}()

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *Watcher) Stop() error {
	return w.fs.Close()
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if err := waitUntilStable(ctx, path); err != nil {
		w.logger.Warn(ctx, "Skipping %s: %v", path, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		w.logger.Error(ctx, "Open inbox file %s: %v", path, err)
		return
	}
	defer f.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	req := pipeline.Request{
		// The path is the source identifier: re-dropping the same file
		// reuses the same artifact slot.
		Source: pipeline.NewUpload(f, path, ext),
		Clean:  true,
	}

	res, err := w.runner.Run(ctx, req)
	if err != nil {
		if errors.Is(err, pipeline.ErrBusy) {
			w.logger.Warn(ctx, "Inbox file %s rejected: pipeline at capacity", path)
			return
		}
		w.logger.Error(ctx, "Inbox file %s failed: %v", path, err)
		return
	}

	if err := w.writeProtocol(path, res.Protocol); err != nil {
		w.logger.Error(ctx, "Write protocol for %s: %v", path, err)
		return
	}

	// Done; remove the source so the inbox reflects pending work only.
	if err := os.Remove(path); err != nil {
		w.logger.Warn(ctx, "Failed to remove processed file %s: %v", path, err)
	}

	w.logger.Info(ctx, "Protocol for %s written to %s", filepath.Base(path), w.outbox)
}

func (w *Watcher) writeProtocol(srcPath, text string) error {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	txtPath := filepath.Join(w.outbox, base+"_protocol.txt")
	if err := os.WriteFile(txtPath, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("write %s: %w", txtPath, err)
	}

	docxPath := filepath.Join(w.outbox, base+"_protocol.docx")
	if err := protocol.WriteDocx("Meeting protocol: "+base, text, docxPath); err != nil {
		return fmt.Errorf("render %s: %w", docxPath, err)
	}

	return nil
}

// waitUntilStable polls the file size until it stops growing, so we do
// not read a file that is still being copied in.
func waitUntilStable(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for i := 0; i < 60; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize && info.Size() > 0 {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("file %s did not settle", path)
}
