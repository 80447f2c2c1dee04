package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// buildInkwellBinary compiles the CLI into dir and returns the binary path.
func buildInkwellBinary(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "inkwell")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	buildCmd := exec.Command("go", "build", "-o", bin, "../../cmd/inkwell")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build inkwell: %v\n%s", err, string(out))
	}
	return bin
}

// runCmd runs a command in dir and fails the test on a non-zero exit.
func runCmd(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	fmt.Printf("[%s] executing: %s %v\n", dir, name, args)
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed in %s: %v", name, args, dir, err)
	}
}

// runCmdOut runs a command in dir and returns its combined output.
func runCmdOut(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed in %s: %v\n%s", name, args, dir, err, buf.String())
	}
	return buf.String()
}
