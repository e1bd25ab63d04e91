package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles the querylog binary for exec-style end-to-end tests.
func buildBinary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "querylog_test")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}

	moduleRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}

	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = moduleRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to build querylog: %v\n%s", err, stderr.String())
	}
	return bin
}

func runQuerylog(t *testing.T, bin string, args ...string) (stdout, stderr string) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	_ = cmd.Run()
	return out.String(), errOut.String()
}

func TestE2EFilterByStatus(t *testing.T) {
	bin := buildBinary(t)
	out, _ := runQuerylog(t, bin, "testdata/access.log", "status = 404")
	if !strings.Contains(out, "1.1.1.1") {
		t.Fatalf("expected row for 1.1.1.1 with status 404, got:\n%s", out)
	}
	if strings.Contains(out, "2.2.2.2") {
		t.Fatalf("did not expect 2.2.2.2 (status 200) in output:\n%s", out)
	}
}

func TestE2EGroupAndCount(t *testing.T) {
	bin := buildBinary(t)
	out, _ := runQuerylog(t, bin, "testdata/access.log", "group ip | show ip, count(*)")
	if !strings.Contains(out, "1.1.1.1") || !strings.Contains(out, "2") {
		t.Fatalf("expected ip 1.1.1.1 grouped with count 2, got:\n%s", out)
	}
}

func TestE2ENoColorSuppressesEscapes(t *testing.T) {
	bin := buildBinary(t)
	out, _ := runQuerylog(t, bin, "--no-color", "testdata/access.log", "show ip")
	if strings.Contains(out, "\033[1m") {
		t.Fatalf("expected no bold escape with --no-color, got:\n%q", out)
	}
}

func TestE2EInvalidQueryExitsNonZero(t *testing.T) {
	bin := buildBinary(t)
	cmd := exec.Command(bin, "testdata/access.log", "not a valid query &&&")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected a non-zero exit for an invalid query")
	}
}

func TestE2EWrongArgCountExitsNonZero(t *testing.T) {
	bin := buildBinary(t)
	cmd := exec.Command(bin, "testdata/access.log")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected a non-zero exit when the query argument is missing")
	}
}

func TestE2ENonexistentPathExitsNonZero(t *testing.T) {
	bin := buildBinary(t)
	cmd := exec.Command(bin, filepath.Join(os.TempDir(), "querylog-does-not-exist"), "show ip")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected a non-zero exit for a nonexistent path")
	}
}
