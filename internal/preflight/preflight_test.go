package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rejoin/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryReadable(t *testing.T) {
	result := CheckDirectoryReadable("input", t.TempDir())
	if !result.Passed || !strings.Contains(result.Detail, "read ok") {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestFreeSpace(t *testing.T) {
	dir := t.TempDir()
	free, err := FreeBytes(dir)
	if err != nil {
		t.Fatalf("FreeBytes: %v", err)
	}
	if free == 0 {
		t.Skip("filesystem reports no free space")
	}

	if r := CheckFreeSpace("output", dir, 1); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	r := CheckFreeSpace("output", dir, free+1<<40)
	if r.Passed || !strings.Contains(r.Detail, "needed") {
		t.Fatalf("expected insufficient space, got %#v", r)
	}

	if _, err := FreeBytes(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.ScratchDir = t.TempDir()
	input := t.TempDir()

	results := RunAll(&cfg, input, filepath.Join(t.TempDir(), "missing"))
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	err := Failed(results)
	if err == nil || !strings.Contains(err.Error(), "Output directory") {
		t.Fatalf("expected output directory failure, got %v", err)
	}
	if strings.Contains(err.Error(), "Input directory") {
		t.Fatalf("input should pass: %v", err)
	}

	if got := RunAll(nil, "", ""); got != nil {
		t.Fatalf("expected nil for nil config, got %v", got)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "clearly-not-present-ffmpeg"
	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected missing ffmpeg")
	}
}
