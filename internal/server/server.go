// Package server provides the HTTP API for the speech backend: batch
// generation, cleanup, health, and static serving of generated audio.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/book-expert/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kokoroweb/tts-service/internal/notify"
	"github.com/kokoroweb/tts-service/internal/synth"
)

// AudioURLPrefix is the public URL prefix under which generated files are
// served.
const AudioURLPrefix = "/static/audio/"

// SpeechGenerator produces one audio file per text. Satisfied by
// synth.Generator.
type SpeechGenerator interface {
	Generate(ctx context.Context, input, voice, outputPath string) (*synth.Output, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	generator    SpeechGenerator
	publisher    *notify.Publisher
	audioDir     string
	defaultVoice string
	retry        RetryPolicy
	log          *logger.Logger
}

// New creates a server. publisher may be nil when event publishing is
// disabled.
func New(
	generator SpeechGenerator,
	publisher *notify.Publisher,
	audioDir string,
	defaultVoice string,
	retry RetryPolicy,
	log *logger.Logger,
) *Server {
	return &Server{
		generator:    generator,
		publisher:    publisher,
		audioDir:     audioDir,
		defaultVoice: defaultVoice,
		retry:        retry,
		log:          log,
	}
}

// Router builds the chi router for the service.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	router.Get("/health", s.handleHealth)
	router.Post("/api/generate", s.handleGenerate)
	router.Post("/api/cleanup", s.handleCleanup)
	router.Handle(
		AudioURLPrefix+"*",
		http.StripPrefix(AudioURLPrefix, http.FileServer(http.Dir(s.audioDir))),
	)

	return router
}

func (s *Server) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	_ = json.NewEncoder(writer).Encode(payload)
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]string{"error": message})
}
