package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidgrab/vidgrab/internal/cleanup"
	"github.com/vidgrab/vidgrab/internal/config"
	"github.com/vidgrab/vidgrab/internal/extractor"
	"github.com/vidgrab/vidgrab/internal/transcoder"
	"github.com/vidgrab/vidgrab/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "listen address")
	flag.Parse()

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("preparing directories: %v", err)
	}

	cleaner := cleanup.NewScheduler()
	defer cleaner.Shutdown()

	srv := web.New(cfg, extractor.New(cfg.ExtractorPath), transcoder.New(cfg.ConvertTimeout), cleaner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server: %v", err)
	}
}
