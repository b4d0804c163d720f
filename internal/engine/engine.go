package engine

import (
	"context"
	"fmt"

	"github.com/kokoroweb/tts-service/internal/audio"
	"github.com/kokoroweb/tts-service/internal/core"
)

// Engine drives the inference sidecar per sentence and decodes its WAV
// responses into PCM segments. It implements core.Pipeline.
type Engine struct {
	client *HTTPClient
}

// NewEngine creates a pipeline backed by the given sidecar client.
func NewEngine(client *HTTPClient) *Engine {
	return &Engine{
		client: client,
	}
}

// Synthesize generates audio for one sentence conditioned on the voice
// tensor at voicePath. The sidecar answers with one WAV body per call, so
// the returned slice always holds a single segment.
func (e *Engine) Synthesize(
	ctx context.Context,
	sentence string,
	voicePath string,
) ([]core.Segment, error) {
	req := Request{
		Text:      sentence,
		VoicePath: voicePath,
		LangCode:  defaultLangCode,
		Speed:     defaultSpeed,
	}

	audioData, speechErr := e.client.GenerateSpeech(ctx, req)
	if speechErr != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", speechErr)
	}

	segment, decodeErr := audio.Decode(audioData)
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode engine response: %w", decodeErr)
	}

	return []core.Segment{segment}, nil
}
