// Package audio_test tests WAV encoding, decoding, and chunk timing math.
package audio_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoroweb/tts-service/internal/audio"
	"github.com/kokoroweb/tts-service/internal/core"
)

// silence returns a segment of n zero samples.
func silence(n int) core.Segment {
	return core.Segment{Samples: make([]int, n)}
}

func TestWriteFileAndFileDuration(t *testing.T) {
	t.Parallel()

	segments := []core.Segment{
		silence(core.SampleRate),     // 1.0 s
		silence(core.SampleRate / 2), // 0.5 s
	}

	path := filepath.Join(t.TempDir(), "nested", "out.wav")

	err := audio.WriteFile(path, segments)
	require.NoError(t, err)

	duration, err := audio.FileDuration(path)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, duration, 0.001)
}

func TestWriteFileRejectsEmptySegments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")

	err := audio.WriteFile(path, nil)
	require.ErrorIs(t, err, audio.ErrNoSegmentsToWrite)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")

	err := audio.WriteFile(path, []core.Segment{silence(2400)})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	segment, err := audio.Decode(data)
	require.NoError(t, err)

	assert.Len(t, segment.Samples, 2400)
	assert.InDelta(t, 0.1, segment.Duration(), 0.0001)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := audio.Decode([]byte("this is not a wav file"))
	require.ErrorIs(t, err, audio.ErrInvalidWAV)
}

func TestTimingsAreContiguous(t *testing.T) {
	t.Parallel()

	segments := []core.Segment{
		silence(12000),
		silence(7343),
		silence(24000),
	}

	timings := audio.Timings(segments)
	require.Len(t, timings, 3)

	assert.InDelta(t, 0.0, timings[0].Start, 1e-9)

	for i := 0; i < len(timings)-1; i++ {
		assert.InDelta(t, timings[i].End, timings[i+1].Start, 1e-9)
	}
}

func TestTimingsSumMatchesFileDuration(t *testing.T) {
	t.Parallel()

	segments := []core.Segment{
		silence(4801),
		silence(9923),
		silence(1200),
	}

	timings := audio.Timings(segments)

	total := 0.0
	for _, timing := range timings {
		total += timing.End - timing.Start
	}

	path := filepath.Join(t.TempDir(), "out.wav")

	err := audio.WriteFile(path, segments)
	require.NoError(t, err)

	duration, err := audio.FileDuration(path)
	require.NoError(t, err)

	assert.True(t, math.Abs(total-duration) < 0.001)
}
