// File: fs/result.go
// Author: momentics <momentics@gmail.com>

package fs

import (
	"errors"

	"github.com/momentics/hioload-aio/api"
)

// ErrWriterUsed is returned by a second Write on the same FileWriter.
var ErrWriterUsed = errors.New("fs: writer already used")

// WriteResult is the outcome of a Write. It is an End when Err is nil, with
// Position holding the absolute file position after the last written byte.
// Otherwise it is an Error and Position is undefined.
type WriteResult struct {
	Position int64
	Err      error
}

// IsEnd reports whether the write terminated without error.
func (r WriteResult) IsEnd() bool { return r.Err == nil }

// Code returns the negative error code of an Error result, 0 for End.
func (r WriteResult) Code() int { return api.CodeOf(r.Err) }
