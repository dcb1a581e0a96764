//go:build !windows

package netutil

import "syscall"

func setSockOptInt(fd uintptr, level, opt, value int) error {
	return syscall.SetsockoptInt(int(fd), level, opt, value)
}

func setSockOptLinger(fd uintptr, level, opt int, linger *syscall.Linger) error {
	return syscall.SetsockoptLinger(int(fd), level, opt, linger)
}
