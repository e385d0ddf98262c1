//go:build unix

// File: reactor/fileio_unix.go
// Author: momentics <momentics@gmail.com>
//
// pwrite(2) backend for unix platforms.

package reactor

import "golang.org/x/sys/unix"

type sysFileIO struct{}

func (sysFileIO) Pwrite(fd int, p []byte, offset int64) (int, error) {
	for {
		n, err := unix.Pwrite(fd, p, offset)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}
