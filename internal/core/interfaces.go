// Package core defines the shared types and interfaces for the speech backend.
package core

import "context"

// SampleRate is the fixed output sample rate of the Kokoro pipeline in Hz.
// Every segment, timing window, and written file uses this rate.
const SampleRate = 24000

// Segment holds the decoded mono PCM samples for one generated audio chunk.
type Segment struct {
	Samples []int
}

// Duration returns the segment length in seconds at the fixed sample rate.
func (s Segment) Duration() float64 {
	return float64(len(s.Samples)) / float64(SampleRate)
}

// ChunkTiming is the placement of one generated segment inside the final
// concatenated file, in seconds from the start of the file.
type ChunkTiming struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SynthesisResult is the per-text payload returned to API clients.
type SynthesisResult struct {
	AudioURL     string        `json:"audio_url"`
	Duration     float64       `json:"duration"`
	ChunkTimings []ChunkTiming `json:"chunk_timings"`
	Voice        string        `json:"voice"`
}

// Pipeline is the handle to an initialized text-to-speech pipeline. A single
// sentence may yield one or more audio segments.
type Pipeline interface {
	Synthesize(ctx context.Context, sentence string, voicePath string) ([]Segment, error)
}

// VoiceResolver maps a voice identifier to a local voice asset path,
// fetching the asset on first use.
type VoiceResolver interface {
	Resolve(ctx context.Context, voice string) (string, error)
}
