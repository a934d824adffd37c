package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestResolveArtifactTrustsReportedPath(t *testing.T) {
	dir := t.TempDir()
	reported := writeFile(t, dir, "abc123.mp4", 10)

	artifact, err := ResolveArtifact(dir, "abc123", reported, ModeVideo)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if artifact.Path != reported {
		t.Errorf("path = %q, want reported %q", artifact.Path, reported)
	}
	if artifact.Ext != "mp4" || artifact.MIME != "video/mp4" {
		t.Errorf("ext/mime = %q/%q, want mp4/video/mp4", artifact.Ext, artifact.MIME)
	}
}

func TestResolveArtifactIgnoresPartialReportedPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc123.mp4.part", 100)
	complete := writeFile(t, dir, "abc123.mp4", 10)

	artifact, err := ResolveArtifact(dir, "abc123", filepath.Join(dir, "abc123.mp4.part"), ModeVideo)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if artifact.Path != complete {
		t.Errorf("path = %q, want completed file %q", artifact.Path, complete)
	}
}

func TestResolveArtifactPrefersContainer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc123.webm", 1000)
	preferred := writeFile(t, dir, "abc123.mp4", 10)

	artifact, err := ResolveArtifact(dir, "abc123", "", ModeVideo)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if artifact.Path != preferred {
		t.Errorf("path = %q, want preferred container %q despite smaller size", artifact.Path, preferred)
	}
}

func TestResolveArtifactLargestFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc123.webm", 10)
	largest := writeFile(t, dir, "abc123.mkv", 1000)

	artifact, err := ResolveArtifact(dir, "abc123", "", ModeVideo)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if artifact.Path != largest {
		t.Errorf("path = %q, want largest candidate %q", artifact.Path, largest)
	}
}

func TestResolveArtifactSkipsOtherJobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "other456.mp4", 10)

	_, err := ResolveArtifact(dir, "abc123", "", ModeVideo)
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("err = %v, want ErrArtifactNotFound", err)
	}
	if KindOf(err) != KindArtifactNotFound {
		t.Errorf("kind = %q, want %q", KindOf(err), KindArtifactNotFound)
	}
}

func TestResolveArtifactDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc123.webm", 500)
	writeFile(t, dir, "abc123.mkv", 500)

	first, err := ResolveArtifact(dir, "abc123", "", ModeVideo)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	second, err := ResolveArtifact(dir, "abc123", "", ModeVideo)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if first.Path != second.Path {
		t.Errorf("resolution not stable: %q then %q", first.Path, second.Path)
	}
}

func TestResolveArtifactAudioMode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc123.m4a", 1000)
	preferred := writeFile(t, dir, "abc123.mp3", 10)

	artifact, err := ResolveArtifact(dir, "abc123", "", ModeAudio)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if artifact.Path != preferred {
		t.Errorf("path = %q, want %q", artifact.Path, preferred)
	}
	if artifact.MIME != "audio/mpeg" {
		t.Errorf("mime = %q, want audio/mpeg", artifact.MIME)
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		max      int
		fallback string
		want     string
	}{
		{name: "passthrough", in: "My Video_1-2", max: 80, fallback: "download", want: "My Video_1-2"},
		{name: "strips punctuation", in: "a/b\\c:d*e?\"f<g>h|i", max: 80, fallback: "download", want: "abcdefghi"},
		{name: "all stripped", in: "///:::", max: 80, fallback: "download", want: "download"},
		{name: "empty", in: "", max: 80, fallback: "converted", want: "converted"},
		{name: "truncated", in: "aaaaaa", max: 3, fallback: "download", want: "aaa"},
		{name: "trailing space trimmed after truncation", in: "ab cd", max: 3, fallback: "download", want: "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitle(tt.in, tt.max, tt.fallback); got != tt.want {
				t.Errorf("SanitizeTitle(%q, %d, %q) = %q, want %q", tt.in, tt.max, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestDeliveredName(t *testing.T) {
	if got := DeliveredName("Some: Video!", "mp4"); got != "Some Video.mp4" {
		t.Errorf("DeliveredName = %q, want %q", got, "Some Video.mp4")
	}
}

func TestMIMEForExt(t *testing.T) {
	if got := MIMEForExt("MKV"); got != "video/x-matroska" {
		t.Errorf("MIMEForExt(MKV) = %q", got)
	}
	if got := MIMEForExt("xyz"); got != "application/octet-stream" {
		t.Errorf("MIMEForExt(xyz) = %q, want generic binary type", got)
	}
}
