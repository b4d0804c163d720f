// Package pipeline_test tests the lazy pipeline cache.
package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoroweb/tts-service/internal/core"
	"github.com/kokoroweb/tts-service/internal/pipeline"
)

var errBuildFailed = errors.New("build failed")

// nopPipeline is a minimal core.Pipeline for cache tests.
type nopPipeline struct{}

func (nopPipeline) Synthesize(_ context.Context, _ string, _ string) ([]core.Segment, error) {
	return nil, nil
}

func TestGetBuildsOnce(t *testing.T) {
	t.Parallel()

	var builds atomic.Int64

	cache := pipeline.NewCache(func(_ context.Context) (core.Pipeline, error) {
		builds.Add(1)

		return nopPipeline{}, nil
	})

	require.False(t, cache.Ready())

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int64(1), builds.Load())
	assert.True(t, cache.Ready())
}

func TestGetFailureLeavesCacheUninitialized(t *testing.T) {
	t.Parallel()

	fail := true

	cache := pipeline.NewCache(func(_ context.Context) (core.Pipeline, error) {
		if fail {
			return nil, errBuildFailed
		}

		return nopPipeline{}, nil
	})

	_, err := cache.Get(context.Background())
	require.ErrorIs(t, err, errBuildFailed)
	assert.False(t, cache.Ready())

	// A later call retries the build.
	fail = false

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, cache.Ready())
}

func TestGetIsSafeForConcurrentFirstRequests(t *testing.T) {
	t.Parallel()

	var builds atomic.Int64

	cache := pipeline.NewCache(func(_ context.Context) (core.Pipeline, error) {
		builds.Add(1)

		return nopPipeline{}, nil
	})

	var group sync.WaitGroup

	for range 8 {
		group.Add(1)

		go func() {
			defer group.Done()

			_, err := cache.Get(context.Background())
			assert.NoError(t, err)
		}()
	}

	group.Wait()

	assert.Equal(t, int64(1), builds.Load())
}
