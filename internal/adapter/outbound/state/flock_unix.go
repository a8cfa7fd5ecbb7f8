//go:build !windows

package state

import "golang.org/x/sys/unix"

func lockPrefs(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX)
}

func unlockPrefs(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
