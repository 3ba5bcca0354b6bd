package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `
[project]
name = "cli-test"

[[class]]
name = "Mammal"
[[class]]
name = "Platypus"
parent = "Mammal"

[[generic]]
name = "describe"
  [[generic.method]]
  signature = "Mammal"
  returns = "Warm-blooded"
  [[generic.method]]
  signature = "Platypus"
  returns = "{{next}} [Aquatic]"
  [[generic.method]]
  signature = "Platypus"
  role = "before"
  log = "checking {{type 0}}"

[[call]]
generic = "describe"
args = [{ class = "Platypus" }]
expect = "Warm-blooded [Aquatic]"

[[call]]
generic = "describe"
args = [{ class = "Mammal" }]
resolve = true

[[call]]
generic = "describe"
args = [{ class = "Mammal" }]
resolve = true
`

func writeTestManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "generics.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunManifest(t *testing.T) {
	dir := writeTestManifest(t, testManifest)

	var stdout, stderr bytes.Buffer
	if code := run([]string{dir}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	want := "describe(Platypus) => Warm-blooded [Aquatic]\n" +
		"describe(Mammal) => Warm-blooded\n" +
		"describe(Mammal) => Warm-blooded\n" +
		"  | checking Platypus\n"
	if stdout.String() != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout.String(), want)
	}
}

func TestRunManifestFile(t *testing.T) {
	dir := writeTestManifest(t, testManifest)

	var stdout, stderr bytes.Buffer
	if code := run([]string{filepath.Join(dir, "generics.toml")}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "describe(Platypus) => ") {
		t.Errorf("stdout = %s", stdout.String())
	}
}

func TestRunStats(t *testing.T) {
	dir := writeTestManifest(t, testManifest)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-stats", dir}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Dispatch cache:") {
		t.Fatalf("missing stats header:\n%s", out)
	}
	for _, want := range []string{"version 3", "entries 1", "hits 1", "misses 1", "hit rate 50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestRunTraceAndShow(t *testing.T) {
	dir := writeTestManifest(t, testManifest)
	tracePath := filepath.Join(t.TempDir(), "out", "trace.cbor")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-trace", tracePath, dir}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	stdout.Reset()
	if code := run([]string{"show-trace", tracePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("show-trace exit code = %d, stderr = %s", code, stderr.String())
	}
	want := "before describe(Platypus) [Platypus]\n" +
		"primary describe(Platypus) [Platypus]\n" +
		"  primary describe(Platypus) [Mammal]\n" +
		"primary describe(Mammal) [Mammal]\n" +
		"primary describe(Mammal) [Mammal]\n"
	if stdout.String() != want {
		t.Errorf("trace =\n%s\nwant\n%s", stdout.String(), want)
	}
}

func TestRunCheckFailure(t *testing.T) {
	dir := writeTestManifest(t, strings.Replace(testManifest,
		`expect = "Warm-blooded [Aquatic]"`, `expect = "Cold-blooded"`, 1))

	var stdout, stderr bytes.Buffer
	if code := run([]string{dir}, &stdout, &stderr); code != 0 {
		t.Errorf("exit code without -check = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "FAIL: expected \"Cold-blooded\"") {
		t.Errorf("stdout missing failure:\n%s", stdout.String())
	}

	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"-check", dir}, &stdout, &stderr); code != 1 {
		t.Errorf("exit code with -check = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "1 of 3 calls failed") {
		t.Errorf("stderr = %s", stderr.String())
	}
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr); code != 1 {
		t.Errorf("missing path exit code = %d, want 1", code)
	}

	bad := writeTestManifest(t, "[[class]]\nname = \"Object\"\n")
	stderr.Reset()
	if code := run([]string{bad}, &stdout, &stderr); code != 1 {
		t.Errorf("invalid manifest exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "reserved") {
		t.Errorf("stderr = %s", stderr.String())
	}

	if code := run([]string{"-no-such-flag"}, &stdout, &stderr); code != 2 {
		t.Errorf("bad flag exit code = %d, want 2", code)
	}
	if code := run([]string{"show-trace"}, &stdout, &stderr); code != 2 {
		t.Errorf("show-trace without file exit code = %d, want 2", code)
	}
}

func TestRunZooExample(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-check", filepath.Join("..", "..", "examples", "zoo")}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}
	want := "  | around Platypus\n" +
		"  | before Mammal\n" +
		"  | before object\n" +
		"  | after object\n" +
		"  | after Mammal\n"
	if !strings.HasSuffix(stdout.String(), want) {
		t.Errorf("stdout log =\n%s\nwant suffix\n%s", stdout.String(), want)
	}
}
