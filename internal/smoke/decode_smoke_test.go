package smoke

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func goTool(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping build smoke test in short mode")
	}
	path, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not on PATH")
	}
	return path
}

func run(t *testing.T, dir, name string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("%s %v: %v\n%s", filepath.Base(name), args, err, stderr.String())
	}
	return out
}

// TestGeneratedSampleDecodes builds the CLI and the sample generator and
// runs them the way a user would.
func TestGeneratedSampleDecodes(t *testing.T) {
	goBin := goTool(t)
	root := repoRoot(t)
	tmp := t.TempDir()

	tdrctl := filepath.Join(tmp, "tdrctl")
	run(t, root, goBin, "build", "-o", tdrctl, "./cmd/tdrctl")
	run(t, root, goBin, "run", "./examples/cmd/generate_samples", "-out", tmp)

	archived := filepath.Join(tmp, "sample.bin.zst")
	outDir := filepath.Join(tmp, "out")
	summary := filepath.Join(tmp, "summary.json")
	run(t, tmp, tdrctl, "decode", "--in", archived, "--file", "--out-dir", outDir, "--tz", "UTC", "--summary", summary)

	for _, name := range []string{
		"20060603_180500-180600.hrm",
		"20060604_073000-073043.gps",
		"20060605_064500-064512.hrm",
		"20060605_064500-064512.gps",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing session file %s: %v", name, err)
		}
	}

	manifestPath := filepath.Join(tmp, "manifest.json")
	run(t, tmp, tdrctl, "manifest", "--inputs", archived+","+summary, "--out", manifestPath)
	out := run(t, tmp, tdrctl, "manifest", "--verify", manifestPath)
	if !bytes.Contains(out, []byte("OK: 2 items")) {
		t.Fatalf("verify output = %q", out)
	}

	dump := run(t, tmp, tdrctl, "dump", "--in", archived)
	if !bytes.HasPrefix(dump, []byte("\n00000000:\t02 ")) {
		t.Fatalf("dump prefix = %q", dump[:16])
	}
}
