// Package extractor wraps the external yt-dlp binary behind a typed
// options struct and structured metadata. The binary owns all platform
// networking, stream pairing and merging; this package only builds argument
// lists and decodes the JSON it prints.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vidgrab/vidgrab/internal/media"
)

const defaultBinary = "yt-dlp"

// Options enumerates every recognized extractor option. The zero value
// requests a bare metadata fetch with downloads enabled.
type Options struct {
	Quiet        bool
	NoWarnings   bool
	NoPlaylist   bool
	SkipDownload bool

	// CookieFile is a Netscape-format cookie jar forwarded for
	// login-gated content. Empty means no cookies.
	CookieFile string

	// PlayerClients hints which platform player clients to impersonate.
	PlayerClients []string

	// Format is the selection-chain expression the extractor evaluates
	// left to right.
	Format string

	// OutputTemplate names where downloads land, with the extractor's
	// own placeholder for the real extension.
	OutputTemplate string

	// MergeOutputFormat is the container used when separate video and
	// audio streams are merged.
	MergeOutputFormat string

	// ExtractAudio routes the download through audio post-processing to
	// AudioFormat at AudioQuality.
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string

	// FFmpegLocation overrides the ffmpeg binary the extractor uses for
	// merging and post-processing.
	FFmpegLocation string
}

func (o Options) args(url string) []string {
	args := []string{"-J"}
	if !o.SkipDownload {
		args = append(args, "--no-simulate")
	}
	if o.Quiet {
		args = append(args, "-q")
	}
	if o.NoWarnings {
		args = append(args, "--no-warnings")
	}
	if o.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	if o.CookieFile != "" {
		args = append(args, "--cookies", o.CookieFile)
	}
	if len(o.PlayerClients) > 0 {
		args = append(args, "--extractor-args", "youtube:player_client="+strings.Join(o.PlayerClients, ","))
	}
	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	if o.OutputTemplate != "" {
		args = append(args, "-o", o.OutputTemplate)
	}
	if o.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", o.MergeOutputFormat)
	}
	if o.ExtractAudio {
		args = append(args, "-x")
		if o.AudioFormat != "" {
			args = append(args, "--audio-format", o.AudioFormat)
		}
		if o.AudioQuality != "" {
			args = append(args, "--audio-quality", o.AudioQuality)
		}
	}
	if o.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", o.FFmpegLocation)
	}
	return append(args, url)
}

// Format is one encoding descriptor from the extractor's catalog. Absent
// fields decode to zero values.
type Format struct {
	FormatID       string  `json:"format_id"`
	Height         int     `json:"height"`
	VideoCodec     string  `json:"vcodec"`
	TBR            float64 `json:"tbr"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// RequestedDownload reports where the extractor wrote one download.
type RequestedDownload struct {
	Filepath string `json:"filepath"`
}

// Metadata is the structured result of an extraction, with or without a
// download.
type Metadata struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Thumbnail          string              `json:"thumbnail"`
	Uploader           string              `json:"uploader"`
	ExtractorKey       string              `json:"extractor_key"`
	Duration           float64             `json:"duration"`
	Formats            []Format            `json:"formats"`
	RequestedDownloads []RequestedDownload `json:"requested_downloads"`
}

// ReportedPath returns the output path of the final requested download, or
// empty when the extractor reported none.
func (m *Metadata) ReportedPath() string {
	if len(m.RequestedDownloads) == 0 {
		return ""
	}
	return m.RequestedDownloads[len(m.RequestedDownloads)-1].Filepath
}

// Descriptors converts the catalog into the normalizer's input shape.
func (m *Metadata) Descriptors() []media.Descriptor {
	out := make([]media.Descriptor, 0, len(m.Formats))
	for _, f := range m.Formats {
		out = append(out, media.Descriptor{
			FormatID:       f.FormatID,
			Height:         f.Height,
			VideoCodec:     f.VideoCodec,
			Bitrate:        f.TBR,
			Filesize:       f.Filesize,
			FilesizeApprox: f.FilesizeApprox,
		})
	}
	return out
}

// Client invokes the extractor binary.
type Client struct {
	path string
}

// New returns a client for the given binary path; empty means the default
// binary resolved from PATH.
func New(path string) *Client {
	if path == "" {
		path = defaultBinary
	}
	return &Client{path: path}
}

// Extract runs the extractor synchronously and decodes its metadata. With
// SkipDownload unset this blocks until the download (and any merging or
// post-processing) completes or ctx expires.
func (c *Client) Extract(ctx context.Context, url string, opts Options) (*Metadata, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, opts.args(url)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, media.WrapKind(media.KindExtractorUnavailable, fmt.Errorf("extractor binary %q not found", c.path))
		}
		if ctx.Err() != nil {
			return nil, media.WrapKind(media.KindExtraction, fmt.Errorf("extraction aborted: %w", ctx.Err()))
		}
		msg := media.StripANSI(strings.TrimSpace(stderr.String()))
		if msg == "" {
			msg = err.Error()
		}
		return nil, media.WrapKind(media.KindExtraction, errors.New(msg))
	}

	var meta Metadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return nil, media.WrapKind(media.KindExtraction, fmt.Errorf("decoding extractor output: %w", err))
	}
	return &meta, nil
}
