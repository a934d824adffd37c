// Package transcoder converts uploaded media files with the external
// ffmpeg binary, invoked through ffmpeg-go with an explicit per-target
// codec table and a bounded wall-clock timeout.
package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/vidgrab/vidgrab/internal/media"
)

// VideoTargets and AudioTargets enumerate the supported conversion
// containers.
var (
	VideoTargets = []string{"mp4", "mkv", "avi", "mov", "webm", "flv"}
	AudioTargets = []string{"mp3", "aac", "wav", "ogg", "m4a", "flac"}
)

// AllTargets lists every supported target, video first.
func AllTargets() []string {
	return append(append([]string{}, VideoTargets...), AudioTargets...)
}

// IsSupportedTarget reports whether target is a recognized conversion
// container.
func IsSupportedTarget(target string) bool {
	_, ok := codecArgs[target]
	return ok
}

// codecArgs holds the codec/quality flags per target container.
var codecArgs = map[string]ffmpeg.KwArgs{
	"mp3":  {"codec:a": "libmp3lame", "q:a": "2"},
	"aac":  {"codec:a": "aac", "b:a": "192k"},
	"wav":  {"codec:a": "pcm_s16le"},
	"ogg":  {"codec:a": "libvorbis"},
	"m4a":  {"codec:a": "aac", "b:a": "192k"},
	"flac": {"codec:a": "flac"},
	"mp4":  {"codec:v": "libx264", "crf": "23", "preset": "fast", "codec:a": "aac", "b:a": "192k"},
	"mkv":  {"codec:v": "libx264", "crf": "23", "preset": "fast", "codec:a": "aac", "b:a": "192k"},
	"webm": {"codec:v": "libvpx-vp9", "crf": "30", "b:v": "0", "codec:a": "libopus"},
	"avi":  {"codec:v": "mpeg4", "codec:a": "mp3"},
	"mov":  {"codec:v": "libx264", "codec:a": "aac"},
	"flv":  {"codec:v": "libx264", "codec:a": "aac"},
}

// diagnosticLimit bounds how much ffmpeg stderr is surfaced on failure.
const diagnosticLimit = 2000

// FFmpeg runs conversions with a bounded timeout.
type FFmpeg struct {
	timeout time.Duration
}

// New returns a transcoder whose conversions are killed after timeout.
func New(timeout time.Duration) *FFmpeg {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &FFmpeg{timeout: timeout}
}

// Convert transcodes inputPath into outputPath using the codec flags for
// target. It blocks until the external process exits, times out, or fails;
// diagnostics are attached to transcode failures.
func (f *FFmpeg) Convert(ctx context.Context, inputPath, outputPath, target string) error {
	kwargs, ok := codecArgs[target]
	if !ok {
		return media.WrapKind(media.KindUnsupportedFormat, fmt.Errorf("unsupported target format %q", target))
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return media.WrapKind(media.KindTranscoderUnavailable, errors.New("ffmpeg not found; install FFmpeg and add it to PATH"))
	}

	cmd := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		Silent(true).
		Compile()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Start(); err != nil {
		return media.WrapKind(media.KindTranscode, fmt.Errorf("starting ffmpeg: %w", err))
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			detail := tail(stderr.String(), diagnosticLimit)
			return media.WrapKindDetail(media.KindTranscode, detail, errors.New("conversion failed"))
		}
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return abortError(ctx.Err(), f.timeout)
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
		return media.WrapKind(media.KindTranscodeTimeout, fmt.Errorf("conversion timed out after %s", f.timeout))
	}
}

// abortError distinguishes the deadline expiring mid-conversion from the
// request being cancelled outright. Callers set a context deadline matching
// the conversion timeout, so that deadline usually fires before the internal
// timer does.
func abortError(cause error, timeout time.Duration) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return media.WrapKind(media.KindTranscodeTimeout, fmt.Errorf("conversion timed out after %s", timeout))
	}
	return media.WrapKind(media.KindTranscode, fmt.Errorf("conversion aborted: %w", cause))
}

// tail returns the last max bytes of s.
func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
