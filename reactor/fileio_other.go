//go:build !unix

// File: reactor/fileio_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub backend for platforms without pwrite(2).

package reactor

import "syscall"

type sysFileIO struct{}

func (sysFileIO) Pwrite(int, []byte, int64) (int, error) {
	return 0, syscall.ENOSYS
}
