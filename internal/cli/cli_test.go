package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// chdir is t.Chdir from Go 1.24, which is unavailable on this toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

func TestCollectOverridesOnlyChangedFlags(t *testing.T) {
	flags := deployCmd.Flags()
	if err := flags.Set("runtime", "container"); err != nil {
		t.Fatalf("set runtime: %v", err)
	}
	if err := flags.Set("memory", "1024"); err != nil {
		t.Fatalf("set memory: %v", err)
	}
	if err := flags.Set("no-layers", "true"); err != nil {
		t.Fatalf("set no-layers: %v", err)
	}
	t.Cleanup(func() {
		deployRuntime, deployMemory, deployNoLayers = "", 0, false
		flags.Visit(func(f *pflag.Flag) { f.Changed = false })
	})

	o := collectOverrides(deployCmd)
	if o.Runtime == nil || *o.Runtime != "container" {
		t.Fatalf("runtime override not captured: %+v", o)
	}
	if o.MemoryMB == nil || *o.MemoryMB != 1024 {
		t.Fatalf("memory override not captured: %+v", o)
	}
	if o.UseLayers == nil || *o.UseLayers {
		t.Fatalf("no-layers should map to UseLayers=false: %+v", o)
	}
	if o.Handler != nil || o.TimeoutSeconds != nil {
		t.Fatalf("unset flags must stay nil: %+v", o)
	}
}

func TestResolveProjectIDPrefersFlag(t *testing.T) {
	id, err := resolveProjectID("prj_flag")
	if err != nil {
		t.Fatalf("resolveProjectID: %v", err)
	}
	if id != "prj_flag" {
		t.Fatalf("id = %q, want prj_flag", id)
	}
}

func TestResolveProjectIDFromProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := "project_id: prj_123\nname: demo\n"
	if err := os.WriteFile(filepath.Join(dir, "vaf.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write vaf.yaml: %v", err)
	}
	chdir(t, dir)

	id, err := resolveProjectID("")
	if err != nil {
		t.Fatalf("resolveProjectID: %v", err)
	}
	if id != "prj_123" {
		t.Fatalf("id = %q, want prj_123", id)
	}
}

func TestResolveProjectIDMissingEverywhere(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := resolveProjectID(""); err == nil {
		t.Fatal("expected an error with no flag and no vaf.yaml")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config-dir", t.TempDir(), "version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		flagConfigDir = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute version: %v", err)
	}
	if !strings.Contains(out.String(), "vaf "+buildVersion) {
		t.Fatalf("version output = %q", out.String())
	}
}
