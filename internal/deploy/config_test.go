package deploy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/useVaf/vaf-cli/internal/project"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func sampleFile() *project.File {
	return &project.File{
		ProjectID: "prj_1",
		Name:      "checkout",
		Environments: map[string]project.EnvironmentConfig{
			"production": {
				Runtime:        strPtr("nodejs18"),
				MemoryMB:       intPtr(1024),
				TimeoutSeconds: intPtr(60),
				Handler:        strPtr("src/app.handler"),
				Database:       strPtr("orders-db"),
				BuildCommands:  []string{"npm run build"},
			},
			"staging": {},
		},
	}
}

func TestResolvePrecedencePerField(t *testing.T) {
	file := sampleFile()

	// Declared beats default.
	cfg, err := Resolve(file, "production", Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Runtime != "nodejs18" || cfg.MemoryMB != 1024 || cfg.TimeoutSeconds != 60 {
		t.Fatalf("declared tier not applied: %+v", cfg)
	}
	if cfg.Handler != "src/app.handler" || cfg.Database != "orders-db" {
		t.Fatalf("declared tier not applied: %+v", cfg)
	}

	// Override beats declared, independently per field.
	cfg, err = Resolve(file, "production", Overrides{
		Runtime:  strPtr("nodejs20"),
		MemoryMB: intPtr(256),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Runtime != "nodejs20" || cfg.MemoryMB != 256 {
		t.Fatalf("override tier not applied: %+v", cfg)
	}
	if cfg.TimeoutSeconds != 60 || cfg.Handler != "src/app.handler" {
		t.Fatalf("untouched fields must keep declared values: %+v", cfg)
	}

	// Default applies where neither tier declares.
	cfg, err = Resolve(file, "staging", Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Runtime != DefaultRuntime || cfg.MemoryMB != DefaultMemoryMB ||
		cfg.TimeoutSeconds != DefaultTimeoutSeconds || cfg.Handler != DefaultHandler ||
		cfg.ImageTag != DefaultImageTag {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Database != "" || cfg.Cache != "" || cfg.Storage != "" {
		t.Fatalf("optional references must default to empty: %+v", cfg)
	}
}

func TestResolveBuildCommandsTakenWholesale(t *testing.T) {
	file := sampleFile()
	cfg, err := Resolve(file, "production", Overrides{BuildCommands: []string{"make dist"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(cfg.BuildCommands, []string{"make dist"}) {
		t.Fatalf("override commands must replace declared ones, got %v", cfg.BuildCommands)
	}
}

func TestResolveRuntimeKind(t *testing.T) {
	file := sampleFile()

	cfg, err := Resolve(file, "production", Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Kind != KindZipLayer {
		t.Fatalf("layers default on, got %v", cfg.Kind)
	}

	cfg, err = Resolve(file, "production", Overrides{UseLayers: boolPtr(false)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Kind != KindZip {
		t.Fatalf("expected zip kind, got %v", cfg.Kind)
	}

	cfg, err = Resolve(file, "production", Overrides{Runtime: strPtr(ContainerRuntime)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Kind != KindContainer {
		t.Fatalf("expected container kind, got %v", cfg.Kind)
	}
}

func TestResolveMissingIdentifiers(t *testing.T) {
	if _, err := Resolve(nil, "production", Overrides{}); !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
	if _, err := Resolve(nil, "", Overrides{ProjectID: "prj_1"}); !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
	// Both identifiers from overrides is enough without a project file.
	if _, err := Resolve(nil, "production", Overrides{ProjectID: "prj_1"}); err != nil {
		t.Fatalf("expected success with override identifiers, got %v", err)
	}
}

func TestResolveUnknownEnvironmentListsDeclared(t *testing.T) {
	_, err := Resolve(sampleFile(), "qa", Overrides{})
	var unknown UnknownEnvironmentError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownEnvironmentError, got %v", err)
	}
	want := []string{"production", "staging"}
	if !reflect.DeepEqual(unknown.Declared, want) {
		t.Fatalf("declared list = %v, want %v", unknown.Declared, want)
	}
}

func TestResolveRejectsInvalidValues(t *testing.T) {
	if _, err := Resolve(sampleFile(), "production", Overrides{MemoryMB: intPtr(0)}); err == nil {
		t.Fatalf("expected validation error for zero memory")
	}
	if _, err := Resolve(sampleFile(), "production", Overrides{TimeoutSeconds: intPtr(-5)}); err == nil {
		t.Fatalf("expected validation error for negative timeout")
	}
}

func TestResolveNoStaleValuesAcrossCalls(t *testing.T) {
	file := sampleFile()
	first, err := Resolve(file, "production", Overrides{Runtime: strPtr("go1.22")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := Resolve(file, "staging", Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if second.Runtime == first.Runtime {
		t.Fatalf("second resolution leaked override runtime: %+v", second)
	}
	if second.Database != "" {
		t.Fatalf("second resolution leaked declared database: %+v", second)
	}
}
