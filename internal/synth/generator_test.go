// Package synth_test tests the speech generator.
package synth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoroweb/tts-service/internal/core"
	"github.com/kokoroweb/tts-service/internal/pipeline"
	"github.com/kokoroweb/tts-service/internal/synth"
)

var errSynthesisFailed = errors.New("synthesis failed")

// scriptedPipeline fails sentences containing the failWord and otherwise
// yields one segment of samplesPerCall zero samples.
type scriptedPipeline struct {
	failWord       string
	samplesPerCall int
	calls          int
}

func (p *scriptedPipeline) Synthesize(_ context.Context, sentence string, _ string) ([]core.Segment, error) {
	p.calls++

	if p.failWord != "" && strings.Contains(sentence, p.failWord) {
		return nil, errSynthesisFailed
	}

	return []core.Segment{{Samples: make([]int, p.samplesPerCall)}}, nil
}

// staticResolver resolves every voice to a fixed path.
type staticResolver struct{}

func (staticResolver) Resolve(_ context.Context, voice string) (string, error) {
	return "/voices/" + voice + ".pt", nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "synth-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = log.Close()
	})

	return log
}

func newGenerator(t *testing.T, pipe core.Pipeline) *synth.Generator {
	t.Helper()

	cache := pipeline.NewCache(func(_ context.Context) (core.Pipeline, error) {
		return pipe, nil
	})

	return synth.NewGenerator(cache, staticResolver{}, newTestLogger(t))
}

func TestGenerateWritesConcatenatedAudio(t *testing.T) {
	t.Parallel()

	pipe := &scriptedPipeline{samplesPerCall: core.SampleRate / 2}
	generator := newGenerator(t, pipe)

	outputPath := filepath.Join(t.TempDir(), "audio", "out.wav")

	output, err := generator.Generate(
		context.Background(),
		"Hello world. Goodbye now.",
		"af_heart",
		outputPath,
	)
	require.NoError(t, err)

	assert.Equal(t, 2, pipe.calls)
	require.Len(t, output.ChunkTimings, 2)
	assert.Empty(t, output.Failed())

	// Timings are contiguous and sum to the on-disk duration.
	assert.InDelta(t, output.ChunkTimings[0].End, output.ChunkTimings[1].Start, 1e-9)

	total := 0.0
	for _, timing := range output.ChunkTimings {
		total += timing.End - timing.Start
	}

	assert.InDelta(t, total, output.Duration, 0.001)

	_, statErr := os.Stat(outputPath)
	require.NoError(t, statErr)
}

func TestGenerateSkipsFailedSentences(t *testing.T) {
	t.Parallel()

	pipe := &scriptedPipeline{failWord: "Goodbye", samplesPerCall: 2400}
	generator := newGenerator(t, pipe)

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	output, err := generator.Generate(
		context.Background(),
		"Hello world. Goodbye now. Still here.",
		"af_heart",
		outputPath,
	)
	require.NoError(t, err)

	require.Len(t, output.Sentences, 3)
	require.Len(t, output.Failed(), 1)
	assert.Equal(t, "Goodbye now.", output.Failed()[0].Sentence)
	require.ErrorIs(t, output.Failed()[0].Err, errSynthesisFailed)

	// Only the two successful sentences are represented in the timings.
	assert.Len(t, output.ChunkTimings, 2)

	_, statErr := os.Stat(outputPath)
	require.NoError(t, statErr)
}

func TestGenerateFailsWhenNoAudioProduced(t *testing.T) {
	t.Parallel()

	pipe := &scriptedPipeline{failWord: " ", samplesPerCall: 2400}
	generator := newGenerator(t, pipe)

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	_, err := generator.Generate(
		context.Background(),
		"Every sentence fails. All of them.",
		"af_heart",
		outputPath,
	)
	require.ErrorIs(t, err, synth.ErrNoAudioGenerated)

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGeneratePropagatesPipelineBuildFailure(t *testing.T) {
	t.Parallel()

	buildErr := errors.New("engine offline")

	cache := pipeline.NewCache(func(_ context.Context) (core.Pipeline, error) {
		return nil, buildErr
	})

	generator := synth.NewGenerator(cache, staticResolver{}, newTestLogger(t))

	_, err := generator.Generate(context.Background(), "Hello.", "af_heart", filepath.Join(t.TempDir(), "out.wav"))
	require.ErrorIs(t, err, buildErr)
}
