package acquire

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/media"
	"meeting-secretary/internal/pipeline"
)

func (a *Acquirer) acquireRemote(ctx context.Context, src pipeline.Source, scope *artifact.Scope) (*pipeline.Artifact, error) {
	// Host validation happens before any network I/O.
	if err := a.validateURL(src.URL); err != nil {
		return nil, err
	}

	// yt-dlp picks the best audio track, extracts it and hands the
	// result to ffmpeg for the PCM container. The output template keys
	// the artifact by the content id yt-dlp reports, and the printed
	// filepath tells us where it landed.
	args := []string{
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1",
		"--output", filepath.Join(a.store.Dir(), "%(id)s.%(ext)s"),
		"--no-simulate",
		"--print", "after_move:filepath",
		"--quiet",
		src.URL,
	}

	out, err := a.executor.Execute(ctx, a.cfg.Tools.YtDlpPath, args...)
	if err != nil {
		return nil, pipeline.Failf(pipeline.FailAcquisition, "download remote audio: %v", err)
	}

	rawPath := strings.TrimSpace(out)
	if rawPath == "" {
		return nil, pipeline.Failf(pipeline.FailAcquisition, "downloader reported no output file for %s", src.URL)
	}
	scope.Track(rawPath)
	a.logger.Debug(ctx, "Downloaded %s to %s", src.URL, rawPath)

	dur, err := media.Duration(rawPath)
	if err != nil {
		return nil, pipeline.Failf(pipeline.FailAcquisition, "probe downloaded audio: %v", err)
	}
	if dur > a.maxDuration() {
		return nil, pipeline.Failf(pipeline.FailAcquisition,
			"recording is %s, exceeds the %s ceiling", dur.Round(0), a.maxDuration())
	}

	base := filepath.Base(rawPath)
	key := strings.TrimSuffix(base, filepath.Ext(base))

	return &pipeline.Artifact{Path: rawPath, Key: key, Duration: dur}, nil
}

func (a *Acquirer) validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return pipeline.Failf(pipeline.FailValidation, "not a valid URL: %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return pipeline.Failf(pipeline.FailValidation, "not a http(s) URL: %q", raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, allowed := range a.cfg.Acquire.AllowedHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}

	return pipeline.Failf(pipeline.FailValidation, "host %q is not an accepted video source", host)
}
