// Package driver loads program.yml manifests: named runnable brainfuck
// targets plus the remote program packs a project depends on.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest represents the parsed contents of program.yml.
type Manifest struct {
	Path    string
	Name    string
	Version string
	Targets []*TargetSpec
	Packs   map[string]*PackSpec
}

// TargetSpec describes one runnable program from the manifest.
type TargetSpec struct {
	Name      string `yaml:"name"`
	Main      string `yaml:"main"`
	Input     string `yaml:"input"`
	MaxSteps  int    `yaml:"max-steps"`
	TapeLimit int    `yaml:"tape-limit"`
	Debug     bool   `yaml:"debug"`
}

// PackSpec pins a remote collection of brainfuck programs to a git source.
type PackSpec struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

type manifestFile struct {
	Name    string               `yaml:"name"`
	Version string               `yaml:"version"`
	Targets []*TargetSpec        `yaml:"targets"`
	Packs   map[string]*PackSpec `yaml:"packs"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses program.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := &Manifest{
		Path:    absPath,
		Name:    strings.TrimSpace(raw.Name),
		Version: strings.TrimSpace(raw.Version),
		Targets: raw.Targets,
		Packs:   raw.Packs,
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}

	seen := make(map[string]struct{}, len(m.Targets))
	for i, target := range m.Targets {
		if target == nil {
			continue
		}
		name := strings.TrimSpace(target.Name)
		if name == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("targets[%d] missing name", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q declared more than once", name))
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(target.Main) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main source file", name))
		}
	}

	for name, pack := range m.Packs {
		if pack == nil {
			continue
		}
		if strings.TrimSpace(pack.Git) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("packs.%s: git URL required", name))
			continue
		}
		if pack.Rev == "" && pack.Tag == "" && pack.Branch == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("packs.%s: rev, tag, or branch required", name))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

var ErrNoTargets = errors.New("manifest: no targets defined")

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	if m == nil {
		return nil, ErrNoTargets
	}
	for _, target := range m.Targets {
		if target != nil {
			return target, nil
		}
	}
	return nil, ErrNoTargets
}

// FindTarget looks up a target by name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	for _, target := range m.Targets {
		if target != nil && strings.EqualFold(target.Name, name) {
			return target, true
		}
	}
	return nil, false
}

// ResolvePath resolves a manifest-relative path against the manifest's
// directory. Absolute paths pass through unchanged.
func (m *Manifest) ResolvePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(path))
}
