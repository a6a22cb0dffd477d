package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"brainfuck/interpreter-go/pkg/driver"
)

func runPacks(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "bf packs requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(stderr, "bf packs install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runPacksInstall(stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown packs subcommand %q\n", args[0])
		return 1
	}
}

func runPacksInstall(stdout, stderr io.Writer) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifestPath, err := findManifest(cwd)
	if err != nil {
		fmt.Fprintf(stderr, "unable to locate program.yml: %v\n", err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	home, err := resolveBfHome()
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve BF_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(stdout, "Packs: %d\n", len(manifest.Packs))

	names := make([]string, 0, len(manifest.Packs))
	for name := range manifest.Packs {
		names = append(names, name)
	}
	sort.Strings(names)

	fetcher := newPackFetcher(home)
	for _, name := range names {
		spec := manifest.Packs[name]
		if spec == nil {
			continue
		}
		version, checksum, err := fetcher.Fetch(name, spec)
		if err != nil {
			fmt.Fprintf(stderr, "failed to install pack %q: %v\n", name, err)
			return 1
		}
		fmt.Fprintf(stdout, "Installed %s@%s (sha256 %s)\n", name, version, checksum[:12])
	}
	fmt.Fprintln(stdout, "Packs installed.")
	return 0
}

type packFetcher struct {
	home string
}

func newPackFetcher(home string) *packFetcher {
	return &packFetcher{home: home}
}

// Fetch clones the pack's pinned revision into the cache, reusing an
// existing checkout when present, and returns the version label and a
// content checksum of the checkout.
func (f *packFetcher) Fetch(name string, spec *driver.PackSpec) (string, string, error) {
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return "", "", fmt.Errorf("pack %q: git URL required", name)
	}

	baseDir := filepath.Join(f.home, "packs", sanitizeName(name))
	version, err := ensurePackCheckout(baseDir, url, spec)
	if err != nil {
		return "", "", err
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return "", "", err
	}
	return version, checksum, nil
}

func ensurePackCheckout(baseDir, url string, spec *driver.PackSpec) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	revision, descriptor, err := packRevision(spec)
	if err != nil {
		return "", err
	}

	existing := filepath.Join(baseDir, sanitizePathSegment(descriptor))
	if _, err := os.Stat(existing); err == nil {
		return descriptor, nil
	}

	tmpDir, err := os.MkdirTemp(baseDir, "pack-fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	targetDir := filepath.Join(baseDir, sanitizePathSegment(descriptor))
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return descriptor, nil
}

func packRevision(spec *driver.PackSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("packs require rev, tag, or branch")
}

func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.Base(p)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizeName(name string) string {
	return sanitizePathSegment(strings.ToLower(strings.TrimSpace(name)))
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	result := b.String()
	if result == "" {
		return "head"
	}
	return result
}
