//go:build unix

// Package flock provides exclusive, non-blocking file locks used to
// guard workspace state files against concurrent writers.
package flock

import "syscall"

// Exclusive takes an exclusive non-blocking lock on fd. It fails
// immediately when another process already holds the lock.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases the lock held on fd.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
