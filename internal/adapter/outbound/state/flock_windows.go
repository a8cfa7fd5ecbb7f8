//go:build windows

package state

import "golang.org/x/sys/windows"

// lockPrefs blocks until LockFileEx grants an exclusive lock on the first byte.
func lockPrefs(fd uintptr) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(fd), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &ol)
}

func unlockPrefs(fd uintptr) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(fd), 0, 1, 0, &ol)
}
