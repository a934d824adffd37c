package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode distinguishes the two delivery shapes of a download job.
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
)

// Container returns the expected output container for the mode.
func (m Mode) Container() string {
	if m == ModeAudio {
		return "mp3"
	}
	return "mp4"
}

// partSuffix marks in-progress downloads that must never be delivered.
const partSuffix = ".part"

// ErrArtifactNotFound is returned when no output file can be attributed to
// a completed job.
var ErrArtifactNotFound = errors.New("no output file found for job")

// Artifact is the realized output file of a download or conversion job.
type Artifact struct {
	Path string
	Ext  string
	MIME string
}

// ResolveArtifact identifies the single real output file of a finished job.
// The path reported by the job result is trusted when it exists and is not
// an incomplete file; otherwise the scan directory is searched for files
// prefixed with the job identifier, preferring the expected container for
// the mode and falling back to the largest candidate. The resolution is
// deterministic: resolving the same completed job twice yields the same
// artifact.
func ResolveArtifact(dir, jobID, reportedPath string, mode Mode) (Artifact, error) {
	path := ""
	if reportedPath != "" && !strings.HasSuffix(reportedPath, partSuffix) {
		if info, err := os.Stat(reportedPath); err == nil && !info.IsDir() {
			path = reportedPath
		}
	}

	if path == "" {
		found, err := scanForArtifact(dir, jobID, mode)
		if err != nil {
			return Artifact{}, err
		}
		path = found
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = mode.Container()
	}
	return Artifact{Path: path, Ext: ext, MIME: MIMEForExt(ext)}, nil
}

func scanForArtifact(dir, jobID string, mode Mode) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", WrapKind(KindArtifactNotFound, fmt.Errorf("scanning %s: %w", dir, err))
	}

	preferred := "." + mode.Container()
	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, jobID) || strings.HasSuffix(name, partSuffix) {
			continue
		}
		full := filepath.Join(dir, name)
		if strings.HasSuffix(name, preferred) {
			return full, nil
		}
		candidates = append(candidates, full)
	}
	if len(candidates) == 0 {
		return "", WrapKind(KindArtifactNotFound, ErrArtifactNotFound)
	}

	largest := candidates[0]
	var largestSize int64 = -1
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Size() > largestSize {
			largest = candidate
			largestSize = info.Size()
		}
	}
	return largest, nil
}

// SanitizeTitle reduces a title to alphanumerics, spaces, underscores and
// hyphens, bounded to max runes. An empty result falls back to fallback.
func SanitizeTitle(title string, max int, fallback string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	clean := strings.TrimSpace(b.String())
	if runes := []rune(clean); len(runes) > max {
		clean = strings.TrimSpace(string(runes[:max]))
	}
	if clean == "" {
		return fallback
	}
	return clean
}

// DeliveredName builds the human-facing attachment filename for a download.
func DeliveredName(title, ext string) string {
	return SanitizeTitle(title, 80, "download") + "." + ext
}

var mimeByExt = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"flv":  "video/x-flv",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"opus": "audio/ogg",
	"flac": "audio/flac",
}

// MIMEForExt maps a file extension to its MIME type; unknown extensions map
// to a generic binary type.
func MIMEForExt(ext string) string {
	if mime, ok := mimeByExt[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}
