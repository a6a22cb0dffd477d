package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "program.yml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
name: demos
version: 0.1.0
targets:
  - name: hello
    main: programs/hello.bf
  - name: echo
    main: programs/echo.bf
    input: inputs/echo.txt
    max-steps: 100000
    debug: true
packs:
  classics:
    git: https://example.com/bf-classics.git
    tag: v1.2.0
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if manifest.Name != "demos" || manifest.Version != "0.1.0" {
		t.Fatalf("unexpected header: %q %q", manifest.Name, manifest.Version)
	}

	target, err := manifest.DefaultTarget()
	if err != nil {
		t.Fatalf("default target: %v", err)
	}
	if target.Name != "hello" {
		t.Fatalf("default target should be first in manifest order, got %q", target.Name)
	}

	echo, ok := manifest.FindTarget("echo")
	if !ok {
		t.Fatalf("echo target not found")
	}
	if echo.MaxSteps != 100000 || !echo.Debug {
		t.Fatalf("unexpected echo target: %#v", echo)
	}
	if got := manifest.ResolvePath(echo.Input); got != filepath.Join(filepath.Dir(path), "inputs", "echo.txt") {
		t.Fatalf("unexpected resolved input path: %q", got)
	}

	pack, ok := manifest.Packs["classics"]
	if !ok || pack.Tag != "v1.2.0" {
		t.Fatalf("unexpected packs: %#v", manifest.Packs)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
name: ""
targets:
  - name: broken
packs:
  floating:
    git: https://example.com/somewhere.git
`)
	_, err := LoadManifest(path)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	joined := strings.Join(validationErr.Issues, "\n")
	for _, want := range []string{
		"name must be provided",
		`target "broken" requires a main source file`,
		"packs.floating: rev, tag, or branch required",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing issue %q in %q", want, joined)
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demos
entrypoint: nope.bf
`)
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("unknown fields should be rejected")
	}
}

func TestFindTargetMissing(t *testing.T) {
	path := writeManifest(t, `
name: demos
targets:
  - name: hello
    main: hello.bf
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := manifest.FindTarget("absent"); ok {
		t.Fatalf("lookup of missing target should fail")
	}
}
