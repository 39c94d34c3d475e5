package docker

import (
	"strings"
	"testing"
)

func TestDrainMessagesCollectsStreamLines(t *testing.T) {
	input := `{"stream":"Step 1/2 : FROM scratch\n"}
{"status":"Pulling","id":"abc123"}
{"stream":"Successfully built deadbeef\n"}
`
	var lines []string
	if err := drainMessages(strings.NewReader(input), "docker image build", func(s string) {
		lines = append(lines, s)
	}); err != nil {
		t.Fatalf("drainMessages: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
	if lines[1] != "abc123: Pulling" {
		t.Fatalf("unexpected status rendering: %q", lines[1])
	}
}

func TestDrainMessagesSurfacesDaemonError(t *testing.T) {
	input := `{"stream":"Step 1/1 : FROM missing\n"}
{"errorDetail":{"message":"pull access denied"},"error":"pull access denied"}
`
	err := drainMessages(strings.NewReader(input), "docker image build", nil)
	if err == nil || !strings.Contains(err.Error(), "pull access denied") {
		t.Fatalf("expected daemon error, got %v", err)
	}
}
