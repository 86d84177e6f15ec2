package artifact

import (
	"context"
	"os"
	"sync"
)

// Scope tracks every artifact a single pipeline run creates so the run
// can guarantee release on all exit paths. The runner defers ReleaseAll
// before the first stage executes; a run that fails mid-pipeline frees
// its files the same way a successful one does.
type Scope struct {
	store *Store

	mu    sync.Mutex
	paths []string
}

func (s *Store) NewScope() *Scope {
	return &Scope{store: s}
}

// Track registers a path for release when the scope ends. Tracking the
// same path twice is harmless.
func (sc *Scope) Track(path string) {
	if path == "" {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, p := range sc.paths {
		if p == path {
			return
		}
	}
	sc.paths = append(sc.paths, path)
}

// Release removes a single tracked artifact early, once no later stage
// needs it.
func (sc *Scope) Release(ctx context.Context, path string) {
	sc.mu.Lock()
	kept := sc.paths[:0]
	found := false
	for _, p := range sc.paths {
		if p == path {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	sc.paths = kept
	sc.mu.Unlock()

	if found {
		sc.remove(ctx, path)
	}
}

// ReleaseAll removes every remaining tracked artifact. Individual
// removal failures are logged, never fatal: by this point the run is
// already terminal.
func (sc *Scope) ReleaseAll(ctx context.Context) {
	sc.mu.Lock()
	paths := sc.paths
	sc.paths = nil
	sc.mu.Unlock()

	for _, p := range paths {
		sc.remove(ctx, p)
	}
}

func (sc *Scope) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		sc.store.logger.Warn(ctx, "Failed to release artifact %s: %v", path, err)
		return
	}
	sc.store.logger.Debug(ctx, "Released artifact: %s", path)
}
