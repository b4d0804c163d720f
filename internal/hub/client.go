// Package hub provides a client for fetching model assets from a remote
// model repository and caching them on the local filesystem.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
)

// resolvePathFormat builds the download URL for a file inside a repository,
// following the hub's "resolve" URL convention.
const resolvePathFormat = "%s/%s/resolve/main/%s"

const (
	dirPermission  = 0o750
	filePermission = 0o600
)

// ErrUnexpectedStatus indicates the hub answered with a non-OK status code.
var ErrUnexpectedStatus = errors.New("unexpected status from model hub")

// Client downloads files from a single model repository over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	repo       string
	log        *logger.Logger
}

// New creates a hub client for the given repository (e.g.
// "hexgrad/Kokoro-82M") hosted at baseURL.
func New(baseURL, repo string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		repo:       repo,
		log:        log,
	}
}

// Fetch ensures the repository file remotePath exists at localPath,
// downloading it when absent. It returns localPath on success. The download
// goes through a temporary file so a failed fetch never leaves a truncated
// asset behind.
func (c *Client) Fetch(ctx context.Context, remotePath, localPath string) (string, error) {
	_, statErr := os.Stat(localPath)
	if statErr == nil {
		return localPath, nil
	}

	if !os.IsNotExist(statErr) {
		return "", fmt.Errorf("failed to stat cached asset %s: %w", localPath, statErr)
	}

	c.log.Info("Downloading %s from %s/%s", remotePath, c.baseURL, c.repo)

	downloadErr := c.download(ctx, remotePath, localPath)
	if downloadErr != nil {
		return "", downloadErr
	}

	return localPath, nil
}

func (c *Client) download(ctx context.Context, remotePath, localPath string) error {
	mkdirErr := os.MkdirAll(filepath.Dir(localPath), dirPermission)
	if mkdirErr != nil {
		return fmt.Errorf("failed to create asset directory: %w", mkdirErr)
	}

	url := fmt.Sprintf(resolvePathFormat, c.baseURL, c.repo, remotePath)

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if requestErr != nil {
		return fmt.Errorf("failed to create download request: %w", requestErr)
	}

	response, doErr := c.httpClient.Do(request)
	if doErr != nil {
		return fmt.Errorf("failed to download %s: %w", url, doErr)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s for %s", ErrUnexpectedStatus, response.Status, url)
	}

	return writeAtomically(localPath, response.Body)
}

// writeAtomically streams body to a temporary sibling file and renames it
// into place once fully written.
func writeAtomically(localPath string, body io.Reader) error {
	partPath := localPath + ".part"

	partFile, createErr := os.OpenFile(
		partPath,
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
		filePermission,
	)
	if createErr != nil {
		return fmt.Errorf("failed to create temporary download file: %w", createErr)
	}

	_, copyErr := io.Copy(partFile, body)

	closeErr := partFile.Close()

	if copyErr != nil {
		_ = os.Remove(partPath)

		return fmt.Errorf("failed to write download data: %w", copyErr)
	}

	if closeErr != nil {
		_ = os.Remove(partPath)

		return fmt.Errorf("failed to close temporary download file: %w", closeErr)
	}

	renameErr := os.Rename(partPath, localPath)
	if renameErr != nil {
		return fmt.Errorf("failed to move downloaded asset into place: %w", renameErr)
	}

	return nil
}
