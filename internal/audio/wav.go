// Package audio handles WAV encoding and decoding for the speech backend.
//
// All audio in the system is mono 16-bit PCM at the fixed pipeline sample
// rate; anything else coming back from the inference engine is rejected.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/kokoroweb/tts-service/internal/core"
)

// WAV format parameters for generated files.
const (
	BitDepth      = 16
	Channels      = 1
	wavAudioFmt   = 1
	dirPermission = 0o750
)

// Static errors.
var (
	ErrInvalidWAV        = errors.New("invalid WAV data")
	ErrUnexpectedFormat  = errors.New("unexpected audio format")
	ErrNoSegmentsToWrite = errors.New("no segments to write")
)

// Decode parses WAV bytes produced by the inference engine into a Segment.
// The data must be mono audio at the pipeline sample rate.
func Decode(data []byte) (core.Segment, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return core.Segment{}, ErrInvalidWAV
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return core.Segment{}, fmt.Errorf("failed to decode PCM data: %w", err)
	}

	if buffer.Format.NumChannels != Channels {
		return core.Segment{}, fmt.Errorf(
			"%w: expected %d channel(s), got %d",
			ErrUnexpectedFormat,
			Channels,
			buffer.Format.NumChannels,
		)
	}

	if buffer.Format.SampleRate != core.SampleRate {
		return core.Segment{}, fmt.Errorf(
			"%w: expected %d Hz, got %d Hz",
			ErrUnexpectedFormat,
			core.SampleRate,
			buffer.Format.SampleRate,
		)
	}

	return core.Segment{Samples: buffer.Data}, nil
}

// WriteFile concatenates the segments in order and writes them as one WAV
// file at path, creating parent directories as needed.
func WriteFile(path string, segments []core.Segment) error {
	if len(segments) == 0 {
		return ErrNoSegmentsToWrite
	}

	mkdirErr := os.MkdirAll(filepath.Dir(path), dirPermission)
	if mkdirErr != nil {
		return fmt.Errorf("failed to create output directory: %w", mkdirErr)
	}

	file, createErr := os.Create(path)
	if createErr != nil {
		return fmt.Errorf("failed to create audio file: %w", createErr)
	}

	encoder := wav.NewEncoder(file, core.SampleRate, BitDepth, Channels, wavAudioFmt)

	buffer := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: Channels,
			SampleRate:  core.SampleRate,
		},
		Data:           concat(segments),
		SourceBitDepth: BitDepth,
	}

	writeErr := encoder.Write(buffer)
	if writeErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to write WAV data: %w", writeErr)
	}

	encoderErr := encoder.Close()
	if encoderErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to finalize WAV encoder: %w", encoderErr)
	}

	closeErr := file.Close()
	if closeErr != nil {
		return fmt.Errorf("failed to close audio file: %w", closeErr)
	}

	return nil
}

// FileDuration re-reads a written WAV file and returns its duration in
// seconds as reported by the container.
func FileDuration(path string) (float64, error) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return 0, fmt.Errorf("failed to open audio file: %w", openErr)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := wav.NewDecoder(file)

	duration, durationErr := decoder.Duration()
	if durationErr != nil {
		return 0, fmt.Errorf("failed to read audio duration: %w", durationErr)
	}

	return duration.Seconds(), nil
}

// Timings computes the timing window of each segment inside the
// concatenated file from cumulative durations.
func Timings(segments []core.Segment) []core.ChunkTiming {
	timings := make([]core.ChunkTiming, 0, len(segments))

	currentTime := 0.0

	for _, segment := range segments {
		end := currentTime + segment.Duration()
		timings = append(timings, core.ChunkTiming{Start: currentTime, End: end})
		currentTime = end
	}

	return timings
}

func concat(segments []core.Segment) []int {
	total := 0
	for _, segment := range segments {
		total += len(segment.Samples)
	}

	samples := make([]int, 0, total)
	for _, segment := range segments {
		samples = append(samples, segment.Samples...)
	}

	return samples
}
