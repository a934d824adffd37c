package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidgrab/vidgrab/internal/extractor"
	"github.com/vidgrab/vidgrab/internal/media"
	"github.com/vidgrab/vidgrab/internal/transcoder"
)

const maxUploadBytes = 2 << 30 // 2 GiB

// newJobID returns a fresh hex job identifier used to prefix all files a
// job produces.
func newJobID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// cookieFile returns the configured cookie jar when it exists on disk,
// checked per request so operators can drop the file in without a restart.
func (s *Server) cookieFile() string {
	if s.cfg.CookieFile == "" {
		return ""
	}
	if info, err := os.Stat(s.cfg.CookieFile); err != nil || info.IsDir() {
		return ""
	}
	return s.cfg.CookieFile
}

type infoResponse struct {
	Title       string       `json:"title"`
	Thumbnail   string       `json:"thumbnail"`
	Duration    int          `json:"duration"`
	Uploader    string       `json:"uploader"`
	Platform    string       `json:"platform"`
	Resolutions []media.Tier `json:"resolutions"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		writeError(w, media.WrapKind(media.KindMissingInput, errors.New("No URL provided")))
		return
	}

	meta, err := s.extractor.Extract(r.Context(), url, extractor.Options{
		Quiet:         true,
		NoWarnings:    true,
		NoPlaylist:    true,
		SkipDownload:  true,
		CookieFile:    s.cookieFile(),
		PlayerClients: s.cfg.PlayerClients,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	duration := int(meta.Duration)
	best := media.BestByHeight(meta.Descriptors())
	ladder := media.BuildLadder(best, duration)

	writeJSON(w, http.StatusOK, infoResponse{
		Title:       meta.Title,
		Thumbnail:   meta.Thumbnail,
		Duration:    duration,
		Uploader:    meta.Uploader,
		Platform:    meta.ExtractorKey,
		Resolutions: ladder,
	})
}

type downloadRequest struct {
	URL        string `json:"url"`
	Resolution string `json:"resolution"`
	FormatID   string `json:"format_id"`
	MediaType  string `json:"media_type"`
}

// parseDownloadRequest accepts either a JSON body or form fields, so both
// API clients and plain HTML forms can start downloads.
func parseDownloadRequest(r *http.Request) (downloadRequest, error) {
	var req downloadRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, media.WrapKind(media.KindMissingInput, errors.New("invalid JSON payload"))
		}
	} else {
		req.URL = r.FormValue("url")
		req.Resolution = r.FormValue("resolution")
		req.FormatID = r.FormValue("format_id")
		req.MediaType = r.FormValue("media_type")
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.Resolution == "" {
		req.Resolution = "720p"
	}
	if req.MediaType == "" {
		req.MediaType = "video"
	}
	return req, nil
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := parseDownloadRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.URL == "" {
		writeError(w, media.WrapKind(media.KindMissingInput, errors.New("No URL provided")))
		return
	}

	jobID := newJobID()
	mode := media.ModeVideo
	opts := extractor.Options{
		Quiet:          true,
		NoWarnings:     true,
		NoPlaylist:     true,
		CookieFile:     s.cookieFile(),
		PlayerClients:  s.cfg.PlayerClients,
		OutputTemplate: filepath.Join(s.cfg.DownloadDir, jobID+".%(ext)s"),
		FFmpegLocation: s.cfg.FFmpegPath,
	}

	if req.MediaType == "audio" {
		mode = media.ModeAudio
		opts.Format = media.SelectionBestAudio().Expr()
		opts.ExtractAudio = true
		opts.AudioFormat = "mp3"
		opts.AudioQuality = "192K"
	} else {
		if req.FormatID != "" {
			opts.Format = media.SelectionForFormatID(req.FormatID).Expr()
		} else {
			opts.Format = media.SelectionForResolution(req.Resolution).Expr()
		}
		opts.MergeOutputFormat = "mp4"
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.DownloadTimeout)
	defer cancel()

	meta, err := s.extractor.Extract(ctx, req.URL, opts)
	if err != nil {
		s.removeJobFiles(s.cfg.DownloadDir, jobID)
		writeError(w, err)
		return
	}

	artifact, err := media.ResolveArtifact(s.cfg.DownloadDir, jobID, meta.ReportedPath(), mode)
	if err != nil {
		s.removeJobFiles(s.cfg.DownloadDir, jobID)
		writeError(w, media.WrapKind(media.KindArtifactNotFound, errors.New("Download failed - file not found on disk")))
		return
	}

	if mode == media.ModeAudio && artifact.Ext == "mp3" {
		if err := media.EmbedID3Tags(artifact.Path, meta.Title, meta.Uploader); err != nil {
			log.Printf("embedding tags in %s: %v", artifact.Path, err)
		}
	}

	s.cleaner.Schedule(artifact.Path, s.cfg.CleanupDelay)
	s.streamFile(w, artifact, media.DeliveredName(meta.Title, artifact.Ext))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, media.WrapKind(media.KindMissingInput, errors.New("No file uploaded")))
		return
	}
	defer file.Close()

	target := strings.ToLower(strings.TrimSpace(r.FormValue("target_format")))
	if target == "" {
		target = "mp3"
	}
	if !transcoder.IsSupportedTarget(target) {
		writeError(w, media.WrapKind(media.KindUnsupportedFormat,
			fmt.Errorf("Unsupported target format %q. Supported: %s", target, strings.Join(transcoder.AllTargets(), ", "))))
		return
	}

	jobID := newJobID()
	origExt := filepath.Ext(header.Filename)
	inputPath := filepath.Join(s.cfg.ConvertDir, jobID+"_input"+origExt)
	outputPath := filepath.Join(s.cfg.ConvertDir, jobID+"_output."+target)

	if err := saveUpload(file, inputPath); err != nil {
		s.cleaner.Schedule(inputPath, 0)
		writeError(w, media.WrapKind(media.KindInternal, fmt.Errorf("saving upload: %w", err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ConvertTimeout)
	defer cancel()

	if err := s.transcoder.Convert(ctx, inputPath, outputPath, target); err != nil {
		s.cleaner.Schedule(inputPath, 0)
		s.cleaner.Schedule(outputPath, 0)
		writeError(w, err)
		return
	}

	s.cleaner.Schedule(inputPath, 0)
	s.cleaner.Schedule(outputPath, s.cfg.CleanupDelay)

	stem := media.SanitizeTitle(strings.TrimSuffix(header.Filename, origExt), 60, "converted")
	artifact := media.Artifact{Path: outputPath, Ext: target, MIME: media.MIMEForExt(target)}
	s.streamFile(w, artifact, stem+"_converted."+target)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uptime := time.Since(s.started).Truncate(time.Second).String()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// removeJobFiles clears whatever a failed job left behind in dir, partial
// downloads included.
func (s *Server) removeJobFiles(dir, jobID string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), jobID) {
			continue
		}
		s.cleaner.Schedule(filepath.Join(dir, entry.Name()), 0)
	}
}

func saveUpload(src io.Reader, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// streamFile delivers an artifact as an attachment. Headers must be written
// before the first byte, so the size comes from a stat rather than the copy.
func (s *Server) streamFile(w http.ResponseWriter, artifact media.Artifact, name string) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		writeError(w, media.WrapKind(media.KindArtifactNotFound, errors.New("Download failed - file not found on disk")))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, media.WrapKind(media.KindInternal, fmt.Errorf("reading artifact: %w", err)))
		return
	}

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("streaming %s: %v", artifact.Path, err)
	}
}
