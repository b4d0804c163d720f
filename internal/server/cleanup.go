package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const audioFileExtension = ".wav"

// cleanupResponse is the payload of the cleanup endpoint.
type cleanupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleCleanup deletes every generated audio file in the output directory.
// A missing directory is not an error.
func (s *Server) handleCleanup(writer http.ResponseWriter, _ *http.Request) {
	entries, readErr := os.ReadDir(s.audioDir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			s.log.Info("Audio folder absent, nothing to clean up")
			writeJSON(writer, http.StatusOK, cleanupResponse{
				Status:  "success",
				Message: "Audio folder cleaned up",
			})

			return
		}

		s.log.Error("Error cleaning up audio: %v", readErr)
		writeJSON(writer, http.StatusInternalServerError, cleanupResponse{
			Status:  "error",
			Message: readErr.Error(),
		})

		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), audioFileExtension) {
			continue
		}

		removeErr := os.Remove(filepath.Join(s.audioDir, entry.Name()))
		if removeErr != nil {
			s.log.Error("Error cleaning up audio: %v", removeErr)
			writeJSON(writer, http.StatusInternalServerError, cleanupResponse{
				Status:  "error",
				Message: removeErr.Error(),
			})

			return
		}
	}

	s.log.Info("Audio folder cleaned up")
	writeJSON(writer, http.StatusOK, cleanupResponse{
		Status:  "success",
		Message: "Audio folder cleaned up",
	})
}
