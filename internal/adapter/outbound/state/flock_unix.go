//go:build !windows

package state

import "syscall"

// flockLock takes an exclusive lock on the storage lock file. Blocks
// until any concurrent tvetmis invocation releases it.
func flockLock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

// flockUnlock releases the storage lock.
func flockUnlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
