// Package service implements the file operations behind the server's tools.
// It owns everything the pure edit engine refuses to: path safety, size and
// encoding limits, locking, and the actual reads and writes.
package service

import (
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"anchor-editor-server/internal/config"
	"anchor-editor-server/internal/editor"
	"anchor-editor-server/internal/errors"
	"anchor-editor-server/internal/filesystem"
	"anchor-editor-server/internal/hashline"
	"anchor-editor-server/internal/lock"
	"anchor-editor-server/internal/models"
	"anchor-editor-server/internal/preview"
)

const (
	maxLineCount      = 100000
	maxFilenameLength = 255
	maxEditsAllowed   = 1000
)

// FileOperationService defines the interface for file operations.
type FileOperationService interface {
	ReadFile(req models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail)
	EditFile(req models.EditFileRequest) (*models.EditFileResponse, *models.ErrorDetail)
	ListFiles(req models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail)
}

// DefaultFileOperationService implements FileOperationService against a
// working directory.
type DefaultFileOperationService struct {
	fsAdapter     filesystem.FileSystemAdapter
	lockManager   lock.LockManagerInterface
	workingDir    string
	maxFileSize   int64
	opTimeout     time.Duration
	filenameRegex *regexp.Regexp
}

// NewDefaultFileOperationService creates a new DefaultFileOperationService.
func NewDefaultFileOperationService(
	fs filesystem.FileSystemAdapter,
	lm lock.LockManagerInterface,
	cfg *config.Config,
) (*DefaultFileOperationService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if lm == nil {
		return nil, fmt.Errorf("lock manager is required")
	}
	absWorkingDir, err := filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("could not resolve working directory: %w", err)
	}
	info, err := os.Stat(absWorkingDir)
	if err != nil {
		return nil, fmt.Errorf("error accessing working directory %s: %w", absWorkingDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory path is not a directory: %s", absWorkingDir)
	}
	return &DefaultFileOperationService{
		fsAdapter:     fs,
		lockManager:   lm,
		workingDir:    absWorkingDir,
		maxFileSize:   int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		opTimeout:     time.Duration(cfg.OperationTimeoutSec) * time.Second,
		filenameRegex: regexp.MustCompile(`^[a-zA-Z0-9._-]+$`),
	}, nil
}

// resolveAndValidatePath turns a client-supplied filename into an absolute
// path inside the working directory, rejecting traversal and symlinks that
// escape it.
func (s *DefaultFileOperationService) resolveAndValidatePath(filename, operation string) (string, *models.ErrorDetail) {
	if len(filename) == 0 || len(filename) > maxFilenameLength {
		return "", errors.NewInvalidParamsError(
			fmt.Sprintf("Filename length must be between 1 and %d characters.", maxFilenameLength), filename, operation)
	}
	if !s.filenameRegex.MatchString(filename) {
		return "", errors.NewInvalidParamsError("Filename contains invalid characters.", filename, operation)
	}

	cleanedPath := filepath.Clean(filepath.Join(s.workingDir, filename))
	if !strings.HasPrefix(cleanedPath, s.workingDir+string(os.PathSeparator)) {
		return "", errors.NewInvalidParamsError("Path traversal attempt detected.", filename, operation)
	}

	// If the target (or a symlinked parent) exists, make sure it does not
	// resolve outside the working directory.
	resolved, err := s.fsAdapter.EvalSymlinks(cleanedPath)
	if err != nil {
		if os.IsNotExist(underlying(err)) {
			return cleanedPath, nil
		}
		return "", errors.NewFileSystemError(filename, operation, fmt.Sprintf("Error evaluating symlinks: %v", err))
	}
	resolvedDir, err := s.fsAdapter.EvalSymlinks(s.workingDir)
	if err != nil {
		resolvedDir = s.workingDir
	}
	if resolved != resolvedDir && !strings.HasPrefix(resolved, resolvedDir+string(os.PathSeparator)) {
		return "", errors.NewInvalidParamsError("Path traversal attempt detected (symlink escapes working directory).", filename, operation)
	}
	return cleanedPath, nil
}

func underlying(err error) error {
	for unwrapped := stdErrors.Unwrap(err); unwrapped != nil; unwrapped = stdErrors.Unwrap(err) {
		err = unwrapped
	}
	return err
}

// readLines loads a file, enforcing size, encoding and line-count limits,
// and returns its lines plus the raw content.
func (s *DefaultFileOperationService) readLines(filename, filePath, operation string) ([]string, []byte, *models.ErrorDetail) {
	stats, err := s.fsAdapter.GetFileStats(filePath)
	if err != nil {
		if os.IsNotExist(underlying(err)) {
			return nil, nil, errors.NewFileNotFoundError(filename, operation)
		}
		if os.IsPermission(underlying(err)) {
			return nil, nil, errors.NewPermissionDeniedError(filename, operation)
		}
		return nil, nil, errors.NewFileSystemError(filename, operation, fmt.Sprintf("Error getting file stats: %v", err))
	}
	if stats.IsDir {
		return nil, nil, errors.NewInvalidParamsError(fmt.Sprintf("Path '%s' is a directory, not a file.", filename), filename, operation)
	}
	if stats.Size > s.maxFileSize {
		return nil, nil, errors.NewFileTooLargeError(filename, stats.Size, int(s.maxFileSize/(1024*1024)))
	}

	content, err := s.fsAdapter.ReadFileBytes(filePath)
	if err != nil {
		if os.IsPermission(underlying(err)) {
			return nil, nil, errors.NewPermissionDeniedError(filename, operation)
		}
		return nil, nil, errors.NewFileSystemError(filename, operation, fmt.Sprintf("Error reading file: %v", err))
	}
	if !s.fsAdapter.IsValidUTF8(content) {
		return nil, nil, errors.NewInvalidEncodingError(filename, operation, "File content is not valid UTF-8")
	}
	lines := s.fsAdapter.SplitLines(content)
	if len(lines) > maxLineCount {
		return nil, nil, errors.NewInvalidParamsError(
			fmt.Sprintf("File exceeds maximum line count of %d.", maxLineCount), filename, operation)
	}
	return lines, content, nil
}

// ReadFile returns file content with every line anchored as
// "<n>#<fingerprint>|<content>". The anchors are what a later edit call
// presents back; they are only valid until the file next changes.
func (s *DefaultFileOperationService) ReadFile(req models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Name, "read")
	if errDetail != nil {
		return nil, errDetail
	}
	if (req.StartLine != 0 && req.StartLine < 1) || (req.EndLine != 0 && req.EndLine < 1) {
		return nil, errors.NewInvalidParamsError("Line numbers must be 1 or greater if specified.", req.Name, "read")
	}
	if req.StartLine > 0 && req.EndLine > 0 && req.StartLine > req.EndLine {
		return nil, errors.NewInvalidParamsError("start_line cannot be greater than end_line.", req.Name, "read")
	}

	lines, _, errDetail := s.readLines(req.Name, filePath, "read")
	if errDetail != nil {
		return nil, errDetail
	}
	total := len(lines)

	start, end := req.StartLine, req.EndLine
	rangeRequested := start != 0 || end != 0
	if start == 0 {
		start = 1
	}
	if end == 0 || end > total {
		end = total
	}
	if start > total && total > 0 {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("start_line %d is greater than total lines %d.", start, total), req.Name, "read")
	}

	var selected []string
	if total > 0 && start <= end {
		selected = lines[start-1 : end]
	}

	resp := &models.ReadFileResponse{
		Content:    hashline.TagLines(selected, start),
		TotalLines: total,
	}
	if rangeRequested {
		resp.RangeRequested = &models.RangeRequested{StartLine: start, EndLine: end}
	}
	return resp, nil
}

// EditFile applies a batch of anchored edits. The engine validates every
// anchor against the file's current content and either the whole batch
// applies or nothing does; its typed failures pass through with their
// message text intact.
func (s *DefaultFileOperationService) EditFile(req models.EditFileRequest) (*models.EditFileResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Name, "edit")
	if errDetail != nil {
		return nil, errDetail
	}

	edits, err := editor.DecodeEdits(req.Edits)
	if err != nil {
		return nil, errors.FromEngineError(err, req.Name)
	}
	if len(edits) > maxEditsAllowed {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("Number of edits exceeds maximum allowed of %d.", maxEditsAllowed), req.Name, "edit")
	}

	fileLock, lockErr := s.lockManager.AcquireLock(filePath, s.opTimeout)
	if lockErr != nil {
		return nil, errors.NewOperationLockFailedError(req.Name, "edit", lockErr.Error())
	}
	defer func() { _ = s.lockManager.ReleaseLock(fileLock) }()

	var before string
	var fileCreated bool
	exists, fsErr := s.fsAdapter.FileExists(filePath)
	if fsErr != nil {
		if os.IsPermission(underlying(fsErr)) {
			return nil, errors.NewPermissionDeniedError(req.Name, "edit")
		}
		return nil, errors.NewFileSystemError(req.Name, "edit", fmt.Sprintf("Error checking file existence: %v", fsErr))
	}
	if exists {
		_, content, errDetail := s.readLines(req.Name, filePath, "edit")
		if errDetail != nil {
			return nil, errDetail
		}
		// Normalized so engine line numbering matches what ReadFile tagged.
		before = string(s.fsAdapter.NormalizeNewlines(content))
	} else {
		if !req.CreateIfMissing {
			return nil, errors.NewFileNotFoundError(req.Name, "edit")
		}
		fileCreated = true
	}

	report, err := editor.ApplyWithReport(before, edits)
	if err != nil {
		return nil, errors.FromEngineError(err, req.Name)
	}

	newLines := s.fsAdapter.SplitLines([]byte(report.Content))
	if len(newLines) > maxLineCount {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("Edit results in file exceeding maximum line count of %d.", maxLineCount), req.Name, "edit")
	}
	if int64(len(report.Content)) > s.maxFileSize {
		return nil, errors.NewFileTooLargeError(req.Name, int64(len(report.Content)), int(s.maxFileSize/(1024*1024)))
	}

	if report.Content != before || fileCreated {
		if err := s.fsAdapter.WriteFileBytesAtomic(filePath, []byte(report.Content), 0644); err != nil {
			if os.IsPermission(underlying(err)) {
				return nil, errors.NewPermissionDeniedError(req.Name, "edit")
			}
			return nil, errors.NewFileSystemError(req.Name, "edit", fmt.Sprintf("Error writing file: %v", err))
		}
	}

	return &models.EditFileResponse{
		Success:           true,
		AppliedEdits:      len(edits) - report.DeduplicatedEdits - report.NoopEdits,
		DeduplicatedEdits: report.DeduplicatedEdits,
		NoopEdits:         report.NoopEdits,
		FileCreated:       fileCreated,
		NewTotalLines:     len(newLines),
		Preview:           preview.Render(before, report.Content),
	}, nil
}

// ListFiles lists non-hidden regular files in the working directory.
func (s *DefaultFileOperationService) ListFiles(_ models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail) {
	dirEntries, err := s.fsAdapter.ListDir(s.workingDir)
	if err != nil {
		if os.IsPermission(underlying(err)) {
			return nil, errors.NewPermissionDeniedError(s.workingDir, "list")
		}
		return nil, errors.NewFileSystemError(s.workingDir, "list", fmt.Sprintf("Failed to list directory: %v", err))
	}

	files := []models.FileInfo{}
	for _, entry := range dirEntries {
		if entry.IsDir || entry.IsHidden {
			continue
		}
		info := models.FileInfo{
			Name:     entry.Name,
			Size:     entry.Size,
			Modified: entry.ModTime.UTC().Format(time.RFC3339),
			Readable: (entry.Mode & 0400) != 0,
			Writable: (entry.Mode & 0200) != 0,
			Lines:    -1,
		}
		switch {
		case entry.Size == 0:
			info.Lines = 0
		case entry.Size > s.maxFileSize:
			// too large to count
		default:
			content, readErr := s.fsAdapter.ReadFileBytes(filepath.Join(s.workingDir, entry.Name))
			if readErr == nil && s.fsAdapter.IsValidUTF8(content) {
				if n := len(s.fsAdapter.SplitLines(content)); n <= maxLineCount {
					info.Lines = n
				}
			}
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return &models.ListFilesResponse{
		Files:      files,
		TotalCount: len(files),
		Directory:  s.workingDir,
	}, nil
}
