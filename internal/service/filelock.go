package service

import (
	"fmt"
	"os"
	"syscall"
)

// lockBoard acquires an exclusive advisory lock (LOCK_EX) on a sidecar
// .lock file next to the board file, serializing board access across
// processes. It returns an unlock function that must be called to
// release the lock.
func lockBoard(boardPath string) (unlock func() error, err error) {
	// Open the lock file for reading and writing (create if not exists).
	f, err := os.OpenFile(boardPath+".lock", os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	// Acquire exclusive lock.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
