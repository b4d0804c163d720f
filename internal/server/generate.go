package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kokoroweb/tts-service/internal/core"
	"github.com/kokoroweb/tts-service/internal/notify"
	"github.com/kokoroweb/tts-service/internal/synth"
)

// Form field names. The frontend posts array-style fields; bare names are
// accepted as a single-entry fallback.
const (
	fieldTexts  = "text[]"
	fieldText   = "text"
	fieldVoices = "voice[]"
	fieldVoice  = "voice"
)

const errNoTextProvided = "no text provided"

// generateResponse is the success payload of the batch endpoint.
type generateResponse struct {
	AudioURLs []core.SynthesisResult `json:"audio_urls"`
}

// handleGenerate synthesizes one audio file per (text, voice) pair. The
// whole batch either succeeds or answers with a single error; files already
// written for earlier pairs are left in place.
func (s *Server) handleGenerate(writer http.ResponseWriter, request *http.Request) {
	start := time.Now()

	parseErr := request.ParseForm()
	if parseErr != nil {
		writeError(writer, http.StatusBadRequest, "malformed form data")

		return
	}

	texts, voices := parseBatch(request, s.defaultVoice)

	if !anyNonEmpty(texts) {
		s.log.Warn("No valid text provided")
		writeError(writer, http.StatusBadRequest, errNoTextProvided)

		return
	}

	voices = padVoices(voices, len(texts), s.defaultVoice)

	results := make([]core.SynthesisResult, 0, len(texts))

	for i, input := range texts {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		result, generateErr := s.generateOne(request, input, voices[i])
		if generateErr != nil {
			s.log.Error("Error generating audio for '%s' with voice %s: %v",
				truncate(input), voices[i], generateErr)
			writeError(writer, http.StatusInternalServerError, generateErr.Error())

			return
		}

		results = append(results, result)
	}

	s.log.Info("Generated %d audio files in %.2fs", len(results), time.Since(start).Seconds())
	writeJSON(writer, http.StatusOK, generateResponse{AudioURLs: results})
}

// generateOne runs a single pair's generation under the retry policy and
// publishes the audio-created event on success.
func (s *Server) generateOne(
	request *http.Request,
	input string,
	voice string,
) (core.SynthesisResult, error) {
	filename := fmt.Sprintf("%s_%s.wav", voice, uuid.NewString())
	outputPath := filepath.Join(s.audioDir, filename)

	output, err := retryWithPolicy(
		request.Context(),
		s.retry,
		func() (*synth.Output, error) {
			return s.generator.Generate(request.Context(), input, voice, outputPath)
		},
	)
	if err != nil {
		return core.SynthesisResult{}, err
	}

	if failed := output.Failed(); len(failed) > 0 {
		s.log.Warn("Skipped %d of %d sentences for '%s'",
			len(failed), len(output.Sentences), truncate(input))
	}

	result := core.SynthesisResult{
		AudioURL:     AudioURLPrefix + filename,
		Duration:     output.Duration,
		ChunkTimings: output.ChunkTimings,
		Voice:        voice,
	}

	publishErr := s.publisher.Publish(notify.AudioCreatedEvent{
		AudioURL:    result.AudioURL,
		Voice:       voice,
		Duration:    result.Duration,
		GeneratedAt: time.Now().UTC(),
	})
	if publishErr != nil {
		s.log.Warn("Failed to publish audio created event: %v", publishErr)
	}

	return result, nil
}

// parseBatch extracts the text and voice lists, falling back to the bare
// field names when the array-style fields are absent.
func parseBatch(request *http.Request, defaultVoice string) ([]string, []string) {
	texts := request.PostForm[fieldTexts]
	if len(texts) == 0 {
		texts = []string{request.PostForm.Get(fieldText)}
	}

	voices := request.PostForm[fieldVoices]
	if len(voices) == 0 {
		voice := request.PostForm.Get(fieldVoice)
		if voice == "" {
			voice = defaultVoice
		}

		voices = []string{voice}
	}

	return texts, voices
}

// padVoices extends voices to count entries by repeating the last voice, or
// the default when the list is empty. A longer list is truncated.
func padVoices(voices []string, count int, defaultVoice string) []string {
	last := defaultVoice
	if len(voices) > 0 {
		last = voices[len(voices)-1]
	}

	padded := make([]string, count)

	for i := range padded {
		if i < len(voices) {
			padded[i] = voices[i]

			continue
		}

		padded[i] = last
	}

	return padded
}

func anyNonEmpty(texts []string) bool {
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			return true
		}
	}

	return false
}

// truncate shortens text for log lines.
func truncate(text string) string {
	const limit = 50

	if len(text) <= limit {
		return text
	}

	return text[:limit] + "..."
}
