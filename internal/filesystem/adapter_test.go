package filesystem

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"single newline", "\n", []string{""}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"bare cr", "a\rb", []string{"a", "b"}},
		{"blank line in middle", "a\n\nb\n", []string{"a", "", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fs.SplitLines([]byte(tc.input))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	if got := string(fs.NormalizeNewlines([]byte("a\r\nb\rc\n"))); got != "a\nb\nc\n" {
		t.Errorf("got %q", got)
	}
	if got := fs.NormalizeNewlines(nil); len(got) != 0 {
		t.Errorf("expected empty output for nil input, got %q", got)
	}
}

func TestIsValidUTF8(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	if !fs.IsValidUTF8([]byte("héllo wörld")) {
		t.Error("valid UTF-8 rejected")
	}
	if fs.IsValidUTF8([]byte{0xff, 0xfe}) {
		t.Error("invalid bytes accepted")
	}
}

func TestWriteFileBytesAtomic(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := fs.WriteFileBytesAtomic(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q", content)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("perm = %o, want 0644", info.Mode().Perm())
	}

	// Overwrite must fully replace.
	if err := fs.WriteFileBytesAtomic(path, []byte("x"), 0644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	content, _ = os.ReadFile(path)
	if string(content) != "x" {
		t.Errorf("after overwrite content = %q", content)
	}
}

func TestFileExists(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	exists, err := fs.FileExists(path)
	if err != nil || exists {
		t.Errorf("exists=%v err=%v before creation", exists, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	exists, err = fs.FileExists(path)
	if err != nil || !exists {
		t.Errorf("exists=%v err=%v after creation", exists, err)
	}
}

func TestGetFileStats(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := fs.GetFileStats(path)
	if err != nil {
		t.Fatalf("GetFileStats failed: %v", err)
	}
	if stats.Size != 5 || stats.IsDir {
		t.Errorf("stats = %+v", stats)
	}
	dirStats, err := fs.GetFileStats(dir)
	if err != nil {
		t.Fatalf("GetFileStats on dir failed: %v", err)
	}
	if !dirStats.IsDir {
		t.Error("directory not reported as dir")
	}
	if _, err := fs.GetFileStats(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListDir(t *testing.T) {
	fs := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	for _, name := range []string{"visible.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := fs.ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		wantHidden := e.Name == ".hidden"
		if e.IsHidden != wantHidden {
			t.Errorf("%s: IsHidden = %v", e.Name, e.IsHidden)
		}
	}
}

func TestCheckDirectoryIsWritable(t *testing.T) {
	if err := CheckDirectoryIsWritable(t.TempDir()); err != nil {
		t.Errorf("writable dir rejected: %v", err)
	}
	if err := CheckDirectoryIsWritable("/does/not/exist-at-all"); err == nil {
		t.Error("missing path accepted")
	}
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CheckDirectoryIsWritable(file); err == nil {
		t.Error("regular file accepted as directory")
	}
}
