// Package web exposes the HTTP API: metadata inspection, downloads,
// conversions, and a status probe.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vidgrab/vidgrab/internal/cleanup"
	"github.com/vidgrab/vidgrab/internal/config"
	"github.com/vidgrab/vidgrab/internal/extractor"
	"github.com/vidgrab/vidgrab/internal/media"
)

// Extractor resolves metadata and performs downloads through the external
// extractor binary.
type Extractor interface {
	Extract(ctx context.Context, url string, opts extractor.Options) (*extractor.Metadata, error)
}

// Transcoder converts an input file into a target container.
type Transcoder interface {
	Convert(ctx context.Context, inputPath, outputPath, target string) error
}

// Server wires the handlers to their collaborators.
type Server struct {
	cfg        *config.Config
	extractor  Extractor
	transcoder Transcoder
	cleaner    *cleanup.Scheduler
	started    time.Time
}

// New builds a server around the given collaborators.
func New(cfg *config.Config, ex Extractor, tc Transcoder, cleaner *cleanup.Scheduler) *Server {
	return &Server{
		cfg:        cfg,
		extractor:  ex,
		transcoder: tc,
		cleaner:    cleaner,
		started:    time.Now(),
	}
}

// Handler returns the routed API surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/convert", s.handleConvert)
	mux.HandleFunc("/api/status", s.handleStatus)
	return withNoCacheHeaders(mux)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully. Write timeout is generous because download responses stream
// whole media files.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// withNoCacheHeaders keeps intermediaries from caching API responses; every
// download and conversion response is unique to its job.
func withNoCacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

var statusByKind = map[media.Kind]int{
	media.KindMissingInput:          http.StatusBadRequest,
	media.KindUnsupportedFormat:     http.StatusBadRequest,
	media.KindExtraction:            http.StatusBadRequest,
	media.KindArtifactNotFound:      http.StatusInternalServerError,
	media.KindTranscode:             http.StatusInternalServerError,
	media.KindTranscodeTimeout:      http.StatusInternalServerError,
	media.KindTranscoderUnavailable: http.StatusInternalServerError,
	media.KindExtractorUnavailable:  http.StatusInternalServerError,
	media.KindInternal:              http.StatusInternalServerError,
}

func statusForKind(kind media.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError maps the error's kind to an HTTP status and renders the
// message with terminal control sequences removed.
func writeError(w http.ResponseWriter, err error) {
	payload := map[string]string{"error": media.StripANSI(err.Error())}
	if detail := media.DetailOf(err); detail != "" {
		payload["details"] = media.StripANSI(detail)
	}
	writeJSON(w, statusForKind(media.KindOf(err)), payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
