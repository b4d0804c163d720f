// main package for the tts-service web backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"

	"github.com/kokoroweb/tts-service/internal/config"
	"github.com/kokoroweb/tts-service/internal/hub"
	"github.com/kokoroweb/tts-service/internal/notify"
	"github.com/kokoroweb/tts-service/internal/pipeline"
	"github.com/kokoroweb/tts-service/internal/server"
	"github.com/kokoroweb/tts-service/internal/synth"
	"github.com/kokoroweb/tts-service/internal/voices"
)

const (
	downloadTimeout   = 10 * time.Minute
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "tts-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// Temporary logger for the bootstrap process; the final one depends on
	// the loaded configuration.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	hubClient := hub.New(cfg.TTS.HubBaseURL, cfg.TTS.ModelRepo, downloadTimeout, log)
	voiceResolver := voices.NewResolver(cfg.Paths.VoicesDir, hubClient, log)
	cache := pipeline.NewCache(pipeline.NewBuilder(cfg.TTS, cfg.Paths.ModelsDir, hubClient, log))
	generator := synth.NewGenerator(cache, voiceResolver, log)

	publisher, publisherErr := connectPublisher(cfg, log)
	if publisherErr != nil {
		return publisherErr
	}

	defer publisher.Close()

	apiServer := server.New(
		generator,
		publisher,
		cfg.Paths.StaticAudioDir,
		cfg.TTS.DefaultVoice,
		server.PolicyFromConfig(cfg.Retry),
		log,
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		log.System("TTS-Service listening on %s", cfg.ListenAddr())

		serveErr := httpServer.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case serveErr := <-errCh:
		return fmt.Errorf("server failed: %w", serveErr)
	case <-ctx.Done():
	}

	log.System("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("failed to shut down server: %w", shutdownErr)
	}

	return nil
}

// connectPublisher dials NATS when configured; a nil publisher disables
// event publishing.
func connectPublisher(cfg *config.Config, log *logger.Logger) (*notify.Publisher, error) {
	if cfg.NATS.URL == "" {
		return nil, nil
	}

	publisher, err := notify.Connect(cfg.NATS.URL, cfg.NATS.AudioCreatedSubject, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}

	log.Info("Publishing audio created events on subject %s", cfg.NATS.AudioCreatedSubject)

	return publisher, nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
