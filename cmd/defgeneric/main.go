// defgeneric CLI - runs the calls declared in a generics.toml manifest
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/defgeneric/dispatch"
	"github.com/chazu/defgeneric/dispatch/trace"
	"github.com/chazu/defgeneric/manifest"
)

// defaultTraceLimit applies when the manifest sets no trace-limit.
const defaultTraceLimit = 4096

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "show-trace" {
		return showTrace(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("defgeneric", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbosity := fs.Int("v", 0, "Log verbosity (0 quiet, 1 info, 2 debug)")
	tracePath := fs.String("trace", "", "Write a CBOR dispatch trace to this file")
	showStats := fs.Bool("stats", false, "Print dispatch cache statistics per generic")
	check := fs.Bool("check", false, "Exit with status 1 if any call misses its expectation")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: defgeneric [options] [dir|file]\n")
		fmt.Fprintf(stderr, "       defgeneric show-trace <trace.cbor>\n\n")
		fmt.Fprintf(stderr, "Builds the generic functions declared in generics.toml and runs its calls.\n")
		fmt.Fprintf(stderr, "Without a path, generics.toml is searched for from the current directory up.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  defgeneric examples/zoo              # Run the zoo manifest\n")
		fmt.Fprintf(stderr, "  defgeneric -trace zoo.cbor -stats .  # Record a trace, print cache stats\n")
		fmt.Fprintf(stderr, "  defgeneric show-trace zoo.cbor       # Print a recorded trace\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	commonlog.Configure(*verbosity, nil)

	m, err := loadManifest(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var opts []dispatch.Option
	var recorder *trace.Recorder
	if *tracePath != "" {
		limit := m.Project.TraceLimit
		if limit <= 0 {
			limit = defaultTraceLimit
		}
		recorder = trace.NewRecorder(limit)
		opts = append(opts, dispatch.WithTracer(recorder))
	}

	prog, err := m.Build(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	failed := 0
	for _, r := range prog.Run() {
		fmt.Fprintln(stdout, r)
		if r.Mismatch != nil {
			failed++
			fmt.Fprintf(stdout, "  FAIL: %v\n", r.Mismatch)
		}
	}
	for _, line := range prog.Log() {
		fmt.Fprintf(stdout, "  | %s\n", line)
	}

	if *showStats {
		printStats(stdout, m, prog)
	}

	if recorder != nil {
		if err := writeTrace(*tracePath, recorder.Snapshot()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *check && failed > 0 {
		fmt.Fprintf(stderr, "%d of %d calls failed\n", failed, len(prog.Calls))
		return 1
	}
	return 0
}

// loadManifest loads path as a manifest file or a directory holding one.
// An empty path searches upward from the working directory.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("no %s found", manifest.FileName)
		}
		return m, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return manifest.Load(path)
	}
	return manifest.LoadFile(path)
}

func printStats(w io.Writer, m *manifest.Manifest, prog *manifest.Program) {
	fmt.Fprintln(w, "Dispatch cache:")
	// Declaration order, not map order.
	for _, decl := range m.Generics {
		g := prog.Generic(decl.Name)
		s := g.CacheStats()
		fmt.Fprintf(w, "  %-16s version %-3d entries %-3d hits %-3d misses %-3d sweeps %-3d hit rate %.1f%%\n",
			g.Name(), g.Version(), s.Entries, s.Hits, s.Misses, s.Sweeps, s.HitRate)
	}
}

func writeTrace(path string, t *trace.Trace) error {
	data, err := trace.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding trace: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

func showTrace(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintf(stderr, "Usage: defgeneric show-trace <trace.cbor>\n")
		return 2
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	t, err := trace.Unmarshal(data)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := t.Format(stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
