// Package pipeline provides the lazily initialized, process-wide handle to
// the synthesis pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/kokoroweb/tts-service/internal/config"
	"github.com/kokoroweb/tts-service/internal/core"
	"github.com/kokoroweb/tts-service/internal/engine"
	"github.com/kokoroweb/tts-service/internal/hub"
)

// ErrEspeakDataMissing indicates the host espeak-ng data directory required
// by the phonemizer is not installed.
var ErrEspeakDataMissing = errors.New("espeak-ng data path not found")

// Builder constructs the pipeline on first use.
type Builder func(ctx context.Context) (core.Pipeline, error)

// Cache is a mutex-guarded lazy-initialization cell for the pipeline. It
// has two states, uninitialized and ready, and only ever moves from the
// first to the second: a failed build leaves it uninitialized and returns
// the error, a successful build is terminal for the process lifetime.
type Cache struct {
	mu       sync.Mutex
	pipeline core.Pipeline
	build    Builder
}

// NewCache creates an uninitialized cache around the given builder.
func NewCache(build Builder) *Cache {
	return &Cache{
		build: build,
	}
}

// Get returns the cached pipeline, building it on the first call.
func (c *Cache) Get(ctx context.Context) (core.Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipeline != nil {
		return c.pipeline, nil
	}

	built, buildErr := c.build(ctx)
	if buildErr != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", buildErr)
	}

	c.pipeline = built

	return c.pipeline, nil
}

// Ready reports whether the pipeline has been initialized.
func (c *Cache) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pipeline != nil
}

// NewBuilder returns the production builder: it verifies the host espeak-ng
// data directory, resolves the model weights through the hub, and connects
// to the inference sidecar.
func NewBuilder(
	cfg config.TTSConfig,
	modelsDir string,
	hubClient *hub.Client,
	log *logger.Logger,
) Builder {
	return func(ctx context.Context) (core.Pipeline, error) {
		start := time.Now()

		_, statErr := os.Stat(cfg.EspeakDataPath)
		if statErr != nil {
			return nil, fmt.Errorf(
				"%w: %s",
				ErrEspeakDataMissing,
				cfg.EspeakDataPath,
			)
		}

		modelPath := filepath.Join(modelsDir, cfg.ModelFile)

		resolved, fetchErr := hubClient.Fetch(ctx, cfg.ModelFile, modelPath)
		if fetchErr != nil {
			return nil, fmt.Errorf("failed to resolve model weights: %w", fetchErr)
		}

		log.Info("Model weights cached at %s", resolved)

		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		client := engine.NewHTTPClient(cfg.EngineURL, timeout)

		healthErr := client.HealthCheck(ctx)
		if healthErr != nil {
			return nil, fmt.Errorf("inference engine is not available: %w", healthErr)
		}

		log.System("Pipeline initialized in %.2fs", time.Since(start).Seconds())

		return engine.NewEngine(client), nil
	}
}
