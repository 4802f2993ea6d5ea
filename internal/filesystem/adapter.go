// Package filesystem isolates OS file access behind a small adapter so the
// service layer can be tested against a fake and writes stay atomic.
package filesystem

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// FileStats holds basic statistics about a file.
type FileStats struct {
	Size    int64
	IsDir   bool
	ModTime time.Time
	Mode    os.FileMode
}

// DirEntryInfo holds information about a directory entry.
type DirEntryInfo struct {
	Name     string
	IsDir    bool
	IsHidden bool
	Mode     os.FileMode
	ModTime  time.Time
	Size     int64
}

// FileSystemAdapter defines the file system operations the service needs.
type FileSystemAdapter interface {
	ReadFileBytes(filePath string) ([]byte, error)
	WriteFileBytesAtomic(filePath string, content []byte, perm os.FileMode) error
	FileExists(filePath string) (bool, error)
	GetFileStats(filePath string) (*FileStats, error)
	IsValidUTF8(content []byte) bool
	NormalizeNewlines(content []byte) []byte
	SplitLines(content []byte) []string
	JoinLinesWithNewlines(lines []string) []byte
	EvalSymlinks(path string) (string, error)
	ListDir(path string) ([]DirEntryInfo, error)
}

// CheckDirectoryIsWritable verifies a directory exists and accepts writes by
// creating and removing a probe file.
func CheckDirectoryIsWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s: %w", path, err)
		}
		return fmt.Errorf("could not stat path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	// #nosec G404 -- rand is fine for probe file names
	probe := filepath.Join(path, fmt.Sprintf(".writable_%d_%d.tmp", time.Now().UnixNano(), rand.Intn(100000)))
	f, err := os.Create(probe)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied to write in directory %s: %w", path, err)
		}
		return fmt.Errorf("error creating probe file in %s: %w", path, err)
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return nil
}

// DefaultFileSystemAdapter implements FileSystemAdapter with the os package.
type DefaultFileSystemAdapter struct{}

// NewDefaultFileSystemAdapter creates a new DefaultFileSystemAdapter.
func NewDefaultFileSystemAdapter() *DefaultFileSystemAdapter {
	return &DefaultFileSystemAdapter{}
}

// ReadFileBytes reads the entire file.
func (fs *DefaultFileSystemAdapter) ReadFileBytes(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s: %w", filePath, err)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading file: %s: %w", filePath, err)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return content, nil
}

// WriteFileBytesAtomic writes content via a temp file in the same directory
// followed by a rename, so readers never observe a half-written file.
func (fs *DefaultFileSystemAdapter) WriteFileBytesAtomic(filePath string, content []byte, finalPerm os.FileMode) error {
	dir := filepath.Dir(filePath)
	tempFile, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(content); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file %s: %w", tempFile.Name(), err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file %s: %w", tempFile.Name(), err)
	}
	if err := os.Rename(tempFile.Name(), filePath); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tempFile.Name(), filePath, err)
	}
	if err := os.Chmod(filePath, finalPerm); err != nil {
		return fmt.Errorf("file written to %s but failed to set permissions to %o: %w", filePath, finalPerm, err)
	}
	return nil
}

// FileExists checks if a file exists.
func (fs *DefaultFileSystemAdapter) FileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking if file exists %s: %w", filePath, err)
}

// GetFileStats retrieves statistics for a file.
func (fs *DefaultFileSystemAdapter) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found for stats: %s: %w", filePath, err)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	return &FileStats{
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
		Mode:    info.Mode().Perm(),
	}, nil
}

// IsValidUTF8 reports whether content is valid UTF-8.
func (fs *DefaultFileSystemAdapter) IsValidUTF8(content []byte) bool {
	return utf8.Valid(content)
}

// NormalizeNewlines converts \r\n and bare \r to \n.
func (fs *DefaultFileSystemAdapter) NormalizeNewlines(content []byte) []byte {
	if len(content) == 0 {
		return []byte{}
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(normalized, []byte("\r"), []byte("\n"))
}

// SplitLines splits normalized content into lines, dropping the empty
// trailing element a final newline produces. A file containing just "\n" is
// one empty line.
func (fs *DefaultFileSystemAdapter) SplitLines(content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}
	s := string(fs.NormalizeNewlines(content))
	lines := strings.Split(s, "\n")
	if strings.HasSuffix(s, "\n") {
		if s == "\n" {
			return []string{""}
		}
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLinesWithNewlines joins lines with \n separators.
func (fs *DefaultFileSystemAdapter) JoinLinesWithNewlines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// EvalSymlinks resolves symbolic links in path.
func (fs *DefaultFileSystemAdapter) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// ListDir lists the entries of a directory.
func (fs *DefaultFileSystemAdapter) ListDir(path string) ([]DirEntryInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", path, err)
	}
	infos := make([]DirEntryInfo, 0, len(entries))
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, DirEntryInfo{
			Name:     entry.Name(),
			IsDir:    entry.IsDir(),
			IsHidden: strings.HasPrefix(entry.Name(), "."),
			Mode:     fi.Mode().Perm(),
			ModTime:  fi.ModTime(),
			Size:     fi.Size(),
		})
	}
	return infos, nil
}
