// Package lock serializes edit batches to a path with advisory OS-level
// file locks. The edit engine itself is stateless and lock-free; whoever
// owns the I/O around it owns the locking.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout is returned when acquiring a lock times out.
	ErrLockTimeout = errors.New("timeout acquiring lock")
	// ErrFilenameRequired is returned when a filename is empty.
	ErrFilenameRequired = errors.New("filename is required")
	// ErrNilLock is returned when a nil lock handle is given to ReleaseLock.
	ErrNilLock = errors.New("nil lock handle")
)

// pollInterval is how often a blocked acquire retries.
const pollInterval = 10 * time.Millisecond

// FileLock is a handle to an acquired OS-level file lock.
type FileLock struct {
	FilePath string
	flock    *flock.Flock
}

// LockManagerInterface is implemented by LockManager and by test fakes.
type LockManagerInterface interface {
	AcquireLock(filePath string, timeout time.Duration) (*FileLock, error)
	ReleaseLock(lock *FileLock) error
}

// LockManager acquires advisory flocks on "<file>.lock" sidecars.
type LockManager struct{}

// NewLockManager initializes and returns a new LockManager.
func NewLockManager() *LockManager {
	return &LockManager{}
}

// AcquireLock obtains an exclusive lock for the given file, polling until
// the timeout elapses.
func (lm *LockManager) AcquireLock(filename string, timeout time.Duration) (*FileLock, error) {
	if filename == "" {
		return nil, ErrFilenameRequired
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fl := flock.New(filename + ".lock")
	locked, err := fl.TryLockContext(ctx, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("error acquiring file lock for %s: %w", filename, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return &FileLock{FilePath: filename, flock: fl}, nil
}

// ReleaseLock releases a previously acquired lock.
func (lm *LockManager) ReleaseLock(lock *FileLock) error {
	if lock == nil {
		return ErrNilLock
	}
	if lock.flock != nil {
		_ = lock.flock.Unlock()
	}
	return nil
}
