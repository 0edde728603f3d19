package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"MOVI10.AVI", "MOVI9.avi", "MOVI0001.AVI", "notes.txt", ".hidden.AVI", "clip.AVI.bak"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.AVI"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested.AVI", "MOVI0002.AVI"))
	if err := os.Symlink(filepath.Join(dir, "MOVI10.AVI"), filepath.Join(dir, "link.AVI")); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir, ".AVI")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{
		filepath.Join(dir, "MOVI0001.AVI"),
		filepath.Join(dir, "MOVI9.avi"),
		filepath.Join(dir, "MOVI10.AVI"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestListExtensionWithoutDot(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp4"))
	touch(t, filepath.Join(dir, "b.AVI"))

	got, err := List(dir, "mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "a.mp4" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestListRelativeDirIsAbsolute(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.AVI"))
	t.Chdir(dir)

	got, err := List(".", ".AVI")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Fatalf("expected one absolute path, got %v", got)
	}
}

func TestListMissingDir(t *testing.T) {
	if _, err := List(filepath.Join(t.TempDir(), "missing"), ".AVI"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
