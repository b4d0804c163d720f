// Package synth implements speech generation: sentence splitting, per
// sentence pipeline calls, segment concatenation, and WAV output.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/logger"

	"github.com/kokoroweb/tts-service/internal/audio"
	"github.com/kokoroweb/tts-service/internal/core"
	"github.com/kokoroweb/tts-service/internal/pipeline"
	"github.com/kokoroweb/tts-service/internal/text"
)

// ErrNoAudioGenerated indicates that every sentence of a text failed to
// synthesize, so there is nothing to write.
var ErrNoAudioGenerated = errors.New("no audio generated")

// SentenceResult records the outcome of synthesizing one sentence. Err is
// nil for sentences that produced segments.
type SentenceResult struct {
	Sentence string
	Segments int
	Err      error
}

// Output is the result of generating speech for one text.
type Output struct {
	ChunkTimings []core.ChunkTiming
	Duration     float64
	Sentences    []SentenceResult
}

// Failed returns the per-sentence results that ended in an error.
func (o *Output) Failed() []SentenceResult {
	var failed []SentenceResult

	for _, result := range o.Sentences {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}

	return failed
}

// Generator produces one concatenated WAV file per input text.
type Generator struct {
	cache  *pipeline.Cache
	voices core.VoiceResolver
	log    *logger.Logger
}

// NewGenerator creates a speech generator over the given pipeline cache and
// voice resolver.
func NewGenerator(cache *pipeline.Cache, voices core.VoiceResolver, log *logger.Logger) *Generator {
	return &Generator{
		cache:  cache,
		voices: voices,
		log:    log,
	}
}

// Generate splits input into sentences, synthesizes each one with the given
// voice, concatenates all produced segments into a single WAV file at
// outputPath, and re-reads the file to report its actual duration.
//
// A sentence that fails to synthesize is recorded in the output and
// skipped; the remaining sentences still contribute to the file. Only when
// no sentence produces any audio does Generate fail, with
// ErrNoAudioGenerated, and no file is written.
func (g *Generator) Generate(
	ctx context.Context,
	input string,
	voice string,
	outputPath string,
) (*Output, error) {
	pipe, pipeErr := g.cache.Get(ctx)
	if pipeErr != nil {
		return nil, pipeErr
	}

	voicePath, voiceErr := g.voices.Resolve(ctx, voice)
	if voiceErr != nil {
		return nil, voiceErr
	}

	sentences := text.SplitSentences(input)

	output := &Output{}

	var segments []core.Segment

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		produced, synthErr := pipe.Synthesize(ctx, sentence, voicePath)
		if synthErr != nil {
			g.log.Warn("Skipping sentence due to error: '%s': %v", sentence, synthErr)
			output.Sentences = append(output.Sentences, SentenceResult{
				Sentence: sentence,
				Segments: 0,
				Err:      synthErr,
			})

			continue
		}

		segments = append(segments, produced...)
		output.Sentences = append(output.Sentences, SentenceResult{
			Sentence: sentence,
			Segments: len(produced),
			Err:      nil,
		})
	}

	if len(segments) == 0 {
		return nil, ErrNoAudioGenerated
	}

	output.ChunkTimings = audio.Timings(segments)

	writeErr := audio.WriteFile(outputPath, segments)
	if writeErr != nil {
		return nil, fmt.Errorf("failed to write audio file: %w", writeErr)
	}

	duration, durationErr := audio.FileDuration(outputPath)
	if durationErr != nil {
		return nil, fmt.Errorf("failed to confirm audio duration: %w", durationErr)
	}

	output.Duration = duration

	g.log.Info("Full audio written to %s (%.2fs)", outputPath, duration)

	return output, nil
}
