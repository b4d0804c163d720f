package main

import (
	"flag"
	"os"
	"testing"
	"time"
)

// TestParseFlags verifies that command-line flags are parsed correctly.
func TestParseFlags(t *testing.T) {
	oldArgs := os.Args

	t.Cleanup(func() { os.Args = oldArgs })

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	os.Args = []string{"cmd", "--text", "Hello, world!", "--voice", "af_bella", "--timeout", "30s"}

	flags := parseFlags()

	if flags.text != "Hello, world!" {
		t.Errorf("Expected text flag %q, got %q", "Hello, world!", flags.text)
	}

	if flags.voice != "af_bella" {
		t.Errorf("Expected voice flag %q, got %q", "af_bella", flags.voice)
	}

	if flags.timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", flags.timeout)
	}

	if flags.server != defaultServer {
		t.Errorf("Expected default server %q, got %q", defaultServer, flags.server)
	}
}

// TestValidateFlags verifies the required-argument check.
func TestValidateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   appFlags
		wantErr bool
	}{
		{name: "no action", flags: appFlags{}, wantErr: true},
		{name: "text given", flags: appFlags{text: "hi"}, wantErr: false},
		{name: "cleanup given", flags: appFlags{cleanup: true}, wantErr: false},
		{name: "health given", flags: appFlags{health: true}, wantErr: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := validateFlags(testCase.flags)
			if testCase.wantErr && err == nil {
				t.Error("Expected an error, got nil")
			}

			if !testCase.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
