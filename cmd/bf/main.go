package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"brainfuck/interpreter-go/pkg/driver"
	"brainfuck/interpreter-go/pkg/interpreter"
	"brainfuck/interpreter-go/pkg/parser"
)

const cliToolVersion = "bf 0.1.0-dev"

var errManifestNotFound = errors.New("program.yml not found")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runProgram(args[1:], stdout, stderr)
	case "packs":
		return runPacks(args[1:], stdout, stderr)
	default:
		return runProgram(args, stdout, stderr)
	}
}

type runFlags struct {
	target    string
	input     string
	inputSet  bool
	inputFile string
	maxSteps  int
	tapeLimit int
	debug     bool
}

func parseRunFlags(args []string) (runFlags, error) {
	var flags runFlags
	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[i], nil
	}
	for ; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--input":
			value, err := next(arg)
			if err != nil {
				return flags, err
			}
			flags.input = value
			flags.inputSet = true
		case "--input-file":
			value, err := next(arg)
			if err != nil {
				return flags, err
			}
			flags.inputFile = value
		case "--max-steps":
			value, err := next(arg)
			if err != nil {
				return flags, err
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return flags, fmt.Errorf("--max-steps requires a non-negative integer, got %q", value)
			}
			flags.maxSteps = n
		case "--tape-limit":
			value, err := next(arg)
			if err != nil {
				return flags, err
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return flags, fmt.Errorf("--tape-limit requires a non-negative integer, got %q", value)
			}
			flags.tapeLimit = n
		case "--debug":
			flags.debug = true
		default:
			if strings.HasPrefix(arg, "-") {
				return flags, fmt.Errorf("unknown flag %q", arg)
			}
			if flags.target != "" {
				return flags, fmt.Errorf("unexpected argument %q", arg)
			}
			flags.target = arg
		}
	}
	if flags.inputSet && flags.inputFile != "" {
		return flags, fmt.Errorf("--input and --input-file are mutually exclusive")
	}
	return flags, nil
}

func runProgram(args []string, stdout, stderr io.Writer) int {
	flags, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	sourcePath, opts, parseOpts, inputPath, err := resolveRunTarget(flags)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	input := []byte(flags.input)
	if !flags.inputSet && inputPath != "" {
		input, err = os.ReadFile(inputPath)
		if err != nil {
			fmt.Fprintf(stderr, "failed to read input %s: %v\n", inputPath, err)
			return 1
		}
	}

	return executeSource(sourcePath, input, opts, parseOpts, stdout, stderr)
}

// resolveRunTarget maps the positional argument (file path, manifest target,
// or pack-qualified program) to a source file plus effective run options.
func resolveRunTarget(flags runFlags) (string, interpreter.Options, parser.Options, string, error) {
	opts := interpreter.Options{MaxSteps: flags.maxSteps, MaxTapeCells: flags.tapeLimit}
	parseOpts := parser.Options{Debug: flags.debug}
	inputPath := flags.inputFile

	candidate := strings.TrimSpace(flags.target)
	if candidate != "" {
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, opts, parseOpts, inputPath, nil
		}
		if strings.Contains(candidate, ":") {
			path, err := resolvePackProgram(candidate)
			if err != nil {
				return "", opts, parseOpts, "", err
			}
			return path, opts, parseOpts, inputPath, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", opts, parseOpts, "", fmt.Errorf("resolve working directory: %w", err)
	}
	manifestPath, err := findManifest(cwd)
	if err != nil {
		if candidate == "" {
			return "", opts, parseOpts, "", fmt.Errorf("bf run requires a source file or manifest target (%w)", err)
		}
		return "", opts, parseOpts, "", fmt.Errorf("no such file %q and no manifest nearby: %w", candidate, err)
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		return "", opts, parseOpts, "", fmt.Errorf("failed to load manifest: %w", err)
	}

	var target *driver.TargetSpec
	if candidate == "" {
		target, err = manifest.DefaultTarget()
		if err != nil {
			return "", opts, parseOpts, "", err
		}
	} else {
		found, ok := manifest.FindTarget(candidate)
		if !ok {
			return "", opts, parseOpts, "", fmt.Errorf("manifest %s defines no target %q", manifest.Path, candidate)
		}
		target = found
	}

	// Explicit flags win over manifest settings.
	if opts.MaxSteps == 0 {
		opts.MaxSteps = target.MaxSteps
	}
	if opts.MaxTapeCells == 0 {
		opts.MaxTapeCells = target.TapeLimit
	}
	if target.Debug {
		parseOpts.Debug = true
	}
	if inputPath == "" && !flags.inputSet && target.Input != "" {
		inputPath = manifest.ResolvePath(target.Input)
	}
	return manifest.ResolvePath(target.Main), opts, parseOpts, inputPath, nil
}

func executeSource(path string, input []byte, opts interpreter.Options, parseOpts parser.Options, stdout, stderr io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read program %s: %v\n", path, err)
		return 1
	}
	program, err := parser.ParseWithOptions(string(source), parseOpts)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	out, err := interpreter.NewMachineWithOptions(program, input, opts).Run()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	io.WriteString(stdout, out)
	return 0
}

// resolvePackProgram maps "pack:path/to/prog.bf" to a file inside the pack
// cache. The pack must already be installed; with several installed versions
// the reference is ambiguous and refused.
func resolvePackProgram(ref string) (string, error) {
	name, rel, ok := strings.Cut(ref, ":")
	if !ok || name == "" || rel == "" {
		return "", fmt.Errorf("pack reference %q must look like pack:path/to/program.bf", ref)
	}
	home, err := resolveBfHome()
	if err != nil {
		return "", err
	}
	packDir := filepath.Join(home, "packs", sanitizeName(name))
	entries, err := os.ReadDir(packDir)
	if err != nil {
		return "", fmt.Errorf("pack %q is not installed (run `bf packs install`): %w", name, err)
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	switch len(versions) {
	case 0:
		return "", fmt.Errorf("pack %q has no installed versions", name)
	case 1:
	default:
		return "", fmt.Errorf("pack %q has %d installed versions; remove stale ones from %s", name, len(versions), packDir)
	}
	path := filepath.Join(packDir, versions[0], filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("pack %q has no program %s: %w", name, rel, err)
	}
	return path, nil
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, "program.yml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no program.yml found from %s upwards: %w", origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveBfHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("BF_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve BF_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".bf"), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bf run [target]")
	fmt.Fprintln(w, "  bf run <file.bf> [--input text | --input-file path] [--max-steps n] [--tape-limit n] [--debug]")
	fmt.Fprintln(w, "  bf <file.bf>")
	fmt.Fprintln(w, "  bf packs install")
	fmt.Fprintln(w, "  bf version")
}
