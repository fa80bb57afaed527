package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unidoc/unipdf/v3/common/license"

	"github.com/pdfhilite/pdfhilite/internal/api"
	"github.com/pdfhilite/pdfhilite/internal/config"
	"github.com/pdfhilite/pdfhilite/internal/outstore"
	"github.com/pdfhilite/pdfhilite/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			log.Warn("unidoc license rejected, continuing unlicensed", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := outstore.New(cfg.UploadDir, cfg.OutputTTL, log)
	if err != nil {
		log.Error("output store init failed", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}
	store.Start(ctx)

	proc := pipeline.NewProcessor(cfg.UploadDir, log)

	srv := api.NewServer(proc, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting pdfhilite", "port", cfg.Port, "upload_dir", cfg.UploadDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
