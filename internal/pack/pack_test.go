package pack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestParsePatternsSkipsCommentsAndBlanks(t *testing.T) {
	input := "# tooling\n\nnode_modules\n*.log\n\n# local\n.env\n"
	got, err := ParsePatterns(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePatterns: %v", err)
	}
	want := []string{"node_modules", "*.log", ".env"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParsePatterns = %v, want %v", got, want)
	}
}

func TestLoadPatternsDefaultsWhenMissing(t *testing.T) {
	got, err := LoadPatterns(t.TempDir())
	if err != nil {
		t.Fatalf("LoadPatterns: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultPatterns()) {
		t.Fatalf("LoadPatterns = %v, want defaults %v", got, DefaultPatterns())
	}
}

func TestLoadPatternsReadsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, IgnoreFileName), "dist\n# built\n*.tmp\n")
	got, err := LoadPatterns(dir)
	if err != nil {
		t.Fatalf("LoadPatterns: %v", err)
	}
	want := []string{"dist", "*.tmp"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadPatterns = %v, want %v", got, want)
	}
}

func TestZipExcludesPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.js"), "main")
	writeFile(t, filepath.Join(dir, "debug.log"), "noise")
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "index.js"), "dep")
	writeFile(t, filepath.Join(dir, "src", "util.js"), "util")

	dest := filepath.Join(t.TempDir(), "pkg.zip")
	size, err := Zip(dir, dest, "", []string{"node_modules", "*.log"})
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	if size <= 0 {
		t.Fatalf("expected positive archive size, got %d", size)
	}
	want := []string{"index.js", "src/util.js"}
	if got := archiveNames(t, dest); !reflect.DeepEqual(got, want) {
		t.Fatalf("archive contents = %v, want %v", got, want)
	}
}

func TestZipWithPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dep", "index.js"), "dep")

	dest := filepath.Join(t.TempDir(), "layer.zip")
	if _, err := Zip(dir, dest, "node_modules", nil); err != nil {
		t.Fatalf("Zip: %v", err)
	}
	want := []string{"node_modules/dep/index.js"}
	if got := archiveNames(t, dest); !reflect.DeepEqual(got, want) {
		t.Fatalf("archive contents = %v, want %v", got, want)
	}
}

func TestZipMissingDirFails(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing.zip")
	if _, err := Zip(filepath.Join(t.TempDir(), "absent"), dest, "", nil); err == nil {
		t.Fatalf("expected error when archiving a missing directory")
	}
}
