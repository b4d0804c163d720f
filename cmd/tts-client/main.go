// Command tts-client is a small CLI for exercising a running tts-service:
// it submits text for synthesis, triggers cleanup, or checks health.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Flag names.
const (
	flagServer  = "server"
	flagText    = "text"
	flagVoice   = "voice"
	flagCleanup = "cleanup"
	flagHealth  = "health"
	flagTimeout = "timeout"
)

// Flag descriptions.
const (
	flagServerDesc  = "Base URL of the tts-service"
	flagTextDesc    = "Text to convert to speech (repeatable via commas is not supported; one text per invocation)"
	flagVoiceDesc   = "Voice identifier to synthesize with"
	flagCleanupDesc = "Delete generated audio files and exit"
	flagHealthDesc  = "Check service health and exit"
	flagTimeoutDesc = "Request timeout"
)

// Defaults.
const (
	defaultServer  = "http://localhost:8000"
	defaultTimeout = 5 * time.Minute
)

// ErrNoAction indicates that neither --text, --cleanup, nor --health was
// given.
var ErrNoAction = errors.New("one of --text, --cleanup, or --health must be provided")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	server  string
	text    string
	voice   string
	cleanup bool
	health  bool
	timeout time.Duration
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	validateErr := validateFlags(flags)
	if validateErr != nil {
		return validateErr
	}

	client := &http.Client{Timeout: flags.timeout}
	ctx := context.Background()

	switch {
	case flags.health:
		return checkHealth(ctx, client, flags.server)
	case flags.cleanup:
		return postAndPrint(ctx, client, flags.server+"/api/cleanup", nil)
	default:
		form := url.Values{}
		form.Set("text", flags.text)

		if flags.voice != "" {
			form.Set("voice", flags.voice)
		}

		return postAndPrint(ctx, client, flags.server+"/api/generate", form)
	}
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.server, flagServer, defaultServer, flagServerDesc)
	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.BoolVar(&flags.cleanup, flagCleanup, false, flagCleanupDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.DurationVar(&flags.timeout, flagTimeout, defaultTimeout, flagTimeoutDesc)
	flag.Parse()

	return flags
}

func validateFlags(flags appFlags) error {
	if flags.text == "" && !flags.cleanup && !flags.health {
		return ErrNoAction
	}

	return nil
}

func checkHealth(ctx context.Context, client *http.Client, server string) error {
	request, requestErr := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		server+"/health",
		http.NoBody,
	)
	if requestErr != nil {
		return fmt.Errorf("failed to create health request: %w", requestErr)
	}

	response, doErr := client.Do(request)
	if doErr != nil {
		return fmt.Errorf("health check failed for %s: %w", server, doErr)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("service is not healthy: %s", response.Status)
	}

	fmt.Println("TTS service is healthy")

	return nil
}

func postAndPrint(ctx context.Context, client *http.Client, endpoint string, form url.Values) error {
	var body io.Reader = http.NoBody
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if requestErr != nil {
		return fmt.Errorf("failed to create request: %w", requestErr)
	}

	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	response, doErr := client.Do(request)
	if doErr != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, doErr)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	payload, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return fmt.Errorf("failed to read response body: %w", readErr)
	}

	printed, printErr := indentJSON(payload)
	if printErr != nil {
		// Not JSON; print as-is.
		fmt.Println(string(payload))
	} else {
		fmt.Println(printed)
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status: %s", response.Status)
	}

	return nil
}

func indentJSON(payload []byte) (string, error) {
	var decoded any

	unmarshalErr := json.Unmarshal(payload, &decoded)
	if unmarshalErr != nil {
		return "", fmt.Errorf("response is not JSON: %w", unmarshalErr)
	}

	pretty, marshalErr := json.MarshalIndent(decoded, "", "  ")
	if marshalErr != nil {
		return "", fmt.Errorf("failed to format response: %w", marshalErr)
	}

	return string(pretty), nil
}
