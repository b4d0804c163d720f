// Package voices resolves voice identifiers to local voice asset paths,
// downloading missing assets from the model hub on first use.
package voices

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/book-expert/logger"
)

const voiceFileExtension = ".pt"

// ErrInvalidVoice indicates a voice identifier that cannot name an asset
// file.
var ErrInvalidVoice = errors.New("invalid voice identifier")

// AssetFetcher fetches a repository file to a local path, returning the
// resolved path. Satisfied by hub.Client.
type AssetFetcher interface {
	Fetch(ctx context.Context, remotePath, localPath string) (string, error)
}

// Resolver caches voice identifier to local path mappings for the process
// lifetime. Entries are added on first resolution and never invalidated.
type Resolver struct {
	mu      sync.Mutex
	cache   map[string]string
	dir     string
	fetcher AssetFetcher
	log     *logger.Logger
}

// NewResolver creates a resolver storing voice assets under dir.
func NewResolver(dir string, fetcher AssetFetcher, log *logger.Logger) *Resolver {
	return &Resolver{
		cache:   make(map[string]string),
		dir:     dir,
		fetcher: fetcher,
		log:     log,
	}
}

// Resolve returns the local path of the voice asset, fetching
// voices/<voice>.pt from the model repository when it is not on disk.
// Resolution is idempotent per voice; a failed fetch leaves no cache entry.
func (r *Resolver) Resolve(ctx context.Context, voice string) (string, error) {
	validateErr := validateVoice(voice)
	if validateErr != nil {
		return "", validateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if path, ok := r.cache[voice]; ok {
		return path, nil
	}

	localPath := filepath.Join(r.dir, voice+voiceFileExtension)
	remotePath := "voices/" + voice + voiceFileExtension

	resolved, fetchErr := r.fetcher.Fetch(ctx, remotePath, localPath)
	if fetchErr != nil {
		return "", fmt.Errorf("failed to resolve voice '%s': %w", voice, fetchErr)
	}

	r.cache[voice] = resolved
	r.log.Info("Cached voice %s at %s", voice, resolved)

	return resolved, nil
}

// validateVoice rejects identifiers that would escape the voices directory.
func validateVoice(voice string) error {
	if voice == "" {
		return fmt.Errorf("%w: empty", ErrInvalidVoice)
	}

	if strings.ContainsAny(voice, "/\\") || strings.Contains(voice, "..") {
		return fmt.Errorf("%w: '%s'", ErrInvalidVoice, voice)
	}

	return nil
}
