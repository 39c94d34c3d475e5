package deploy

import (
	"reflect"
	"testing"
)

func TestBuildReleaseInputTrimsOptionals(t *testing.T) {
	cfg := Config{
		Kind:           KindZip,
		Runtime:        "nodejs20",
		Handler:        "  index.handler  ",
		MemoryMB:       512,
		TimeoutSeconds: 30,
		Database:       "   ",
		Cache:          "sessions ",
		Storage:        "",
	}
	input := BuildReleaseInput(cfg, ArtifactRefs{PackageKey: "uploads/pkg.zip"})

	if input.Database != "" {
		t.Fatalf("whitespace-only database must be omitted, got %q", input.Database)
	}
	if input.Cache != "sessions" {
		t.Fatalf("cache must be trimmed, got %q", input.Cache)
	}
	if input.Storage != "" {
		t.Fatalf("empty storage must be omitted, got %q", input.Storage)
	}
	if input.Handler != "index.handler" {
		t.Fatalf("handler must be trimmed, got %q", input.Handler)
	}
	if input.Key != "uploads/pkg.zip" || input.Image != "" {
		t.Fatalf("package releases carry the backend key only: %+v", input)
	}
}

func TestBuildReleaseInputContainer(t *testing.T) {
	cfg := Config{
		Kind:           KindContainer,
		Runtime:        ContainerRuntime,
		Handler:        "ignored.handler",
		MemoryMB:       1024,
		TimeoutSeconds: 60,
	}
	input := BuildReleaseInput(cfg, ArtifactRefs{ImageRef: "registry.local/app:v3"})

	if input.Image != "registry.local/app:v3" || input.Key != "" {
		t.Fatalf("container releases carry the image ref only: %+v", input)
	}
	if input.Handler != "" {
		t.Fatalf("handler is meaningless for container releases: %+v", input)
	}
}

func TestBuildReleaseInputLayerList(t *testing.T) {
	cfg := Config{Kind: KindZipLayer, Runtime: "nodejs20", MemoryMB: 512, TimeoutSeconds: 30}
	input := BuildReleaseInput(cfg, ArtifactRefs{
		PackageKey: "uploads/pkg.zip",
		LayerRefs:  []string{"arn:layer:1", "  ", "arn:layer:2"},
	})
	want := []string{"arn:layer:1", "arn:layer:2"}
	if !reflect.DeepEqual(input.Layers, want) {
		t.Fatalf("layers = %v, want %v", input.Layers, want)
	}
}
