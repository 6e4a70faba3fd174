package devenv

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFile = ".devlink.lock"

// ErrSessionLocked is returned when another devlink session holds the
// example.
var ErrSessionLocked = errors.New("another devlink session is running for this example")

// SessionLock keeps two sessions from rewriting the same example at once.
type SessionLock struct {
	fileLock *flock.Flock
}

// AcquireLock takes the example's lock without blocking.
func AcquireLock(exampleDir string) (*SessionLock, error) {
	fileLock := flock.New(filepath.Join(exampleDir, lockFile))

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (%s)", ErrSessionLocked, exampleDir)
	}
	return &SessionLock{fileLock: fileLock}, nil
}

// Release drops the lock.
func (l *SessionLock) Release() error {
	if l == nil || l.fileLock == nil {
		return nil
	}
	return l.fileLock.Unlock()
}
