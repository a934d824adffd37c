package transcoder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vidgrab/vidgrab/internal/media"
)

func TestSupportedTargets(t *testing.T) {
	for _, target := range AllTargets() {
		if !IsSupportedTarget(target) {
			t.Errorf("IsSupportedTarget(%q) = false", target)
		}
		if _, ok := codecArgs[target]; !ok {
			t.Errorf("no codec args for %q", target)
		}
	}
	for _, target := range []string{"exe", "", "MP3", "mp4 "} {
		if IsSupportedTarget(target) {
			t.Errorf("IsSupportedTarget(%q) = true", target)
		}
	}
}

func TestAllTargetsCoversBothLists(t *testing.T) {
	all := AllTargets()
	if len(all) != len(VideoTargets)+len(AudioTargets) {
		t.Fatalf("AllTargets has %d entries, want %d", len(all), len(VideoTargets)+len(AudioTargets))
	}
	if len(all) != len(codecArgs) {
		t.Fatalf("target lists and codec table disagree: %d vs %d", len(all), len(codecArgs))
	}
}

func TestAudioTargetsHaveNoVideoCodec(t *testing.T) {
	for _, target := range AudioTargets {
		if _, ok := codecArgs[target]["codec:v"]; ok {
			t.Errorf("audio target %q carries a video codec", target)
		}
	}
	for _, target := range VideoTargets {
		if _, ok := codecArgs[target]["codec:v"]; !ok {
			t.Errorf("video target %q missing a video codec", target)
		}
	}
}

func TestAbortErrorKinds(t *testing.T) {
	// The caller's context deadline matches the conversion timeout and
	// fires first; it must still surface as a timeout, not a plain
	// transcode failure.
	err := abortError(context.DeadlineExceeded, 300*time.Second)
	if got := media.KindOf(err); got != media.KindTranscodeTimeout {
		t.Errorf("deadline kind = %q, want %q", got, media.KindTranscodeTimeout)
	}
	if !strings.Contains(err.Error(), "timed out after 5m0s") {
		t.Errorf("deadline message = %q", err.Error())
	}

	err = abortError(context.Canceled, 300*time.Second)
	if got := media.KindOf(err); got != media.KindTranscode {
		t.Errorf("cancel kind = %q, want %q", got, media.KindTranscode)
	}
	if !strings.Contains(err.Error(), "aborted") {
		t.Errorf("cancel message = %q", err.Error())
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("a", 50) + "END"
	if got := tail(long, 3); got != "END" {
		t.Errorf("tail = %q, want %q", got, "END")
	}
	if got := tail("  short  ", 100); got != "short" {
		t.Errorf("tail = %q, want trimmed %q", got, "short")
	}
}
