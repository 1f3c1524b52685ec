package test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

var tmpDir string

func fixturesDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		fmt.Fprintln(os.Stderr, "cannot find source file")
		os.Exit(1)
	}
	return filepath.Join(filepath.Dir(filename), "fixtures")
}

func Build(name string) string {
	fixt := filepath.Join(fixturesDir(), name+".go")
	binary := filepath.Join(tmpDir, name)

	flags := []string{"build", "-gcflags=all=-N -l", "-o", binary, fixt}

	cmd := exec.Command("go", flags...)
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to build test binary: ", err)
		fmt.Fprintln(os.Stderr, string(out))
		os.Exit(1)
	}
	return binary
}

// BuildC compiles the C files in fixtures/<name> into one executable with
// debug information. The test is skipped when gcc is not installed.
func BuildC(t *testing.T, name string) string {
	t.Helper()
	cc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not installed")
	}

	srcs, err := filepath.Glob(filepath.Join(fixturesDir(), name, "*.c"))
	if err != nil || len(srcs) == 0 {
		t.Fatalf("no C sources for fixture %s", name)
	}
	binary := filepath.Join(tmpDir, name)

	args := append([]string{"-g", "-O0", "-o", binary}, srcs...)
	if out, err := exec.Command(cc, args...).CombinedOutput(); err != nil {
		t.Fatalf("failed to build %s: %v\n%s", name, err, out)
	}
	return binary
}

func Run(m *testing.M) int {
	var err error
	tmpDir, err = os.MkdirTemp("", "gni-")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)
	return code
}
