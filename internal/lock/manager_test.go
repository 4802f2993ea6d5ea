package lock

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

const testTimeout = 200 * time.Millisecond

func TestLockManager_AcquireRelease(t *testing.T) {
	lm := NewLockManager()
	target := filepath.Join(t.TempDir(), "file.txt")

	fl, err := lm.AcquireLock(target, testTimeout)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if fl.FilePath != target {
		t.Errorf("FilePath = %q, want %q", fl.FilePath, target)
	}
	if err := lm.ReleaseLock(fl); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
}

func TestLockManager_EmptyFilename(t *testing.T) {
	lm := NewLockManager()
	if _, err := lm.AcquireLock("", testTimeout); !errors.Is(err, ErrFilenameRequired) {
		t.Errorf("expected ErrFilenameRequired, got %v", err)
	}
}

func TestLockManager_ReleaseNil(t *testing.T) {
	lm := NewLockManager()
	if err := lm.ReleaseLock(nil); !errors.Is(err, ErrNilLock) {
		t.Errorf("expected ErrNilLock, got %v", err)
	}
}

func TestLockManager_ContentionTimesOut(t *testing.T) {
	lm := NewLockManager()
	target := filepath.Join(t.TempDir(), "contended.txt")

	held, err := lm.AcquireLock(target, testTimeout)
	if err != nil {
		t.Fatalf("initial AcquireLock failed: %v", err)
	}
	defer func() { _ = lm.ReleaseLock(held) }()

	start := time.Now()
	_, err = lm.AcquireLock(target, 50*time.Millisecond)
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("timed out too early: %v", elapsed)
	}
}

func TestLockManager_ReacquireAfterRelease(t *testing.T) {
	lm := NewLockManager()
	target := filepath.Join(t.TempDir(), "file.txt")

	fl, err := lm.AcquireLock(target, testTimeout)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if err := lm.ReleaseLock(fl); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	fl2, err := lm.AcquireLock(target, testTimeout)
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	_ = lm.ReleaseLock(fl2)
}
