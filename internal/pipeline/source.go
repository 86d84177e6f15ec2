package pipeline

import (
	"context"
	"io"
	"time"

	"meeting-secretary/internal/artifact"
)

// SourceKind discriminates the two ways a recording reaches the
// pipeline.
type SourceKind int

const (
	SourceUpload SourceKind = iota + 1
	SourceRemoteVideo
)

func (k SourceKind) String() string {
	switch k {
	case SourceUpload:
		return "upload"
	case SourceRemoteVideo:
		return "remote video"
	default:
		return "unknown"
	}
}

// Source is the tagged input variant, created once at request receipt
// and consumed by the acquisition stage.
type Source struct {
	Kind SourceKind

	// Upload fields.
	Payload io.Reader
	ID      string
	Ext     string // container hint of the payload, e.g. "mp3", "ogg"

	// Remote video field.
	URL string
}

func NewUpload(payload io.Reader, id, ext string) Source {
	return Source{Kind: SourceUpload, Payload: payload, ID: id, Ext: ext}
}

func NewRemoteVideo(url string) Source {
	return Source{Kind: SourceRemoteVideo, URL: url}
}

// Artifact is a decoded audio intermediate persisted in the temp store.
type Artifact struct {
	Path     string
	Key      string
	Duration time.Duration
}

// The stage collaborators. Each returns its payload or exactly one
// typed failure; none retries.
type Acquirer interface {
	Acquire(ctx context.Context, src Source, scope *artifact.Scope) (*Artifact, error)
}

type Denoiser interface {
	Denoise(ctx context.Context, in *Artifact, scope *artifact.Scope) (*Artifact, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

type Composer interface {
	Compose(ctx context.Context, analysis string) (string, error)
}
