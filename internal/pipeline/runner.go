package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/logger"
)

// State of a single run. Transitions are strictly sequential; Failed is
// reachable from every non-terminal state.
type State int

const (
	StateAcquiring State = iota + 1
	StateCleaning
	StateTranscribing
	StateAnalyzing
	StateComposing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAcquiring:
		return "acquiring"
	case StateCleaning:
		return "cleaning"
	case StateTranscribing:
		return "transcribing"
	case StateAnalyzing:
		return "analyzing"
	case StateComposing:
		return "composing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when the concurrent run limit is reached; the
// request is rejected before any stage executes.
var ErrBusy = errors.New("pipeline: too many concurrent runs")

// Request describes one pipeline run. Clean indicates whether the
// denoising stage applies to this source kind.
type Request struct {
	ID     string
	Source Source
	Clean  bool
}

// Result is the successful outcome of a run.
type Result struct {
	Protocol   string
	SourceKind SourceKind
	Elapsed    time.Duration
}

// Runner sequences acquire → [denoise] → transcribe → analyze → compose
// for one request at a time per run, aborting on the first stage
// failure. Every artifact a run creates is released by the time the run
// reaches a terminal state, on success and failure alike.
type Runner struct {
	store      *artifact.Store
	acquirer   Acquirer
	denoiser   Denoiser
	transcribe Transcriber
	analyzer   Analyzer
	composer   Composer
	logger     logger.Logger

	slots chan struct{}
}

func NewRunner(
	store *artifact.Store,
	acq Acquirer,
	den Denoiser,
	tr Transcriber,
	an Analyzer,
	comp Composer,
	maxConcurrent int,
	log logger.Logger,
) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{
		store:      store,
		acquirer:   acq,
		denoiser:   den,
		transcribe: tr,
		analyzer:   an,
		composer:   comp,
		logger:     log,
		slots:      make(chan struct{}, maxConcurrent),
	}
}

// Run executes the pipeline for req. It returns ErrBusy without
// entering the pipeline when the admission limit is reached, a
// *StageError when a stage fails, or the composed protocol on success.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	select {
	case r.slots <- struct{}{}:
	default:
		return nil, ErrBusy
	}
	defer func() { <-r.slots }()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	started := time.Now()
	state := StateAcquiring

	scope := r.store.NewScope()
	defer scope.ReleaseAll(ctx)

	r.logger.Info(ctx, "Run %s: started (%s source)", req.ID, req.Source.Kind)

	raw, err := r.acquirer.Acquire(ctx, req.Source, scope)
	if err != nil {
		return nil, r.fail(ctx, req.ID, state, FailAcquisition, err)
	}
	r.logger.Info(ctx, "Run %s: acquired %s (%s)", req.ID, raw.Path, raw.Duration)

	audio := raw
	if req.Clean {
		state = StateCleaning
		cleaned, err := r.denoiser.Denoise(ctx, raw, scope)
		if err != nil {
			return nil, r.fail(ctx, req.ID, state, FailCleaning, err)
		}
		// The raw artifact has no later consumer once the cleaned
		// one exists.
		scope.Release(ctx, raw.Path)
		audio = cleaned
	}

	state = StateTranscribing
	transcript, err := r.transcribe.Transcribe(ctx, audio.Path)
	if err != nil {
		return nil, r.fail(ctx, req.ID, state, FailTranscription, err)
	}
	scope.Release(ctx, audio.Path)
	r.logger.Info(ctx, "Run %s: transcribed %d characters", req.ID, len(transcript))

	state = StateAnalyzing
	analysis, err := r.analyzer.Analyze(ctx, transcript)
	if err != nil {
		return nil, r.fail(ctx, req.ID, state, FailAnalysis, err)
	}

	state = StateComposing
	protocol, err := r.composer.Compose(ctx, analysis)
	if err != nil {
		return nil, r.fail(ctx, req.ID, state, FailComposition, err)
	}

	state = StateDone
	elapsed := time.Since(started)
	r.logger.Info(ctx, "Run %s: %s in %s", req.ID, state, elapsed)

	return &Result{
		Protocol:   protocol,
		SourceKind: req.Source.Kind,
		Elapsed:    elapsed,
	}, nil
}

// fail logs the detailed cause and returns the typed failure. Stage
// packages raise their own kinds; fallback covers causes that escaped
// untyped.
func (r *Runner) fail(ctx context.Context, id string, state State, fallback FailureKind, err error) error {
	serr := Fail(fallback, err)
	r.logger.Error(ctx, "Run %s: failed while %s: %v", id, state, serr)
	return serr
}
