// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for pinning the calling OS thread to a CPU. Platform
// implementations live in build-tagged files.

package affinity

import (
	"errors"
	"runtime"
)

// ErrUnsupported is returned where thread affinity cannot be set.
var ErrUnsupported = errors.New("affinity: not supported on this platform")

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpu modulo the number of CPUs. On failure the goroutine stays locked; call
// runtime.UnlockOSThread to release it.
func Pin(cpu int) error {
	runtime.LockOSThread()
	return setAffinityPlatform(cpu % runtime.NumCPU())
}
