// File: reactor/fileio.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral file I/O backend used by SubmitWrite.

package reactor

// FileIO performs the blocking positional writes behind SubmitWrite.
// Implementations are called from worker goroutines.
type FileIO interface {
	// Pwrite writes p at offset without changing the file position. It follows
	// pwrite(2): bytes written, or an error (preferably a syscall.Errno).
	Pwrite(fd int, p []byte, offset int64) (int, error)
}

// SystemFileIO returns the operating-system backend.
func SystemFileIO() FileIO {
	return sysFileIO{}
}
