// File: reactor/fs.go
// Author: momentics <momentics@gmail.com>
//
// Positional file write requests. The blocking call runs on the worker pool;
// the completion is queued back to the loop and delivered there.

package reactor

import (
	"syscall"

	"github.com/momentics/hioload-aio/api"
)

// NewFsRequest allocates request scratch state.
func (l *Loop) NewFsRequest() *api.FsRequest {
	req := &api.FsRequest{}
	l.mu.Lock()
	l.requests[req] = false
	l.mu.Unlock()
	return req
}

// ReleaseFsRequest frees req. Releasing an unknown, released or in-flight
// request panics.
func (l *Loop) ReleaseFsRequest(req *api.FsRequest) {
	l.mu.Lock()
	busy, ok := l.requests[req]
	if ok && !busy {
		delete(l.requests, req)
	}
	l.mu.Unlock()
	switch {
	case !ok:
		panic("reactor: release of unknown or released fs request")
	case busy:
		panic("reactor: release of in-flight fs request")
	}
}

// SubmitWrite writes buf to fd at offset without moving the file position.
// buf must not be modified until cb runs.
func (l *Loop) SubmitWrite(req *api.FsRequest, fd int, buf []byte, offset int64, cb api.FsCallback) error {
	const op = "write"
	switch {
	case cb == nil, offset < 0:
		return api.NewSubmissionError(op, api.CodeInval, api.ErrInvalidArgument)
	case fd < 0:
		return api.NewSubmissionError(op, api.CodeBadFd, syscall.EBADF)
	case l.closed.Load():
		return api.NewSubmissionError(op, api.CodeCanceled, api.ErrLoopClosed)
	}

	l.mu.Lock()
	busy, ok := l.requests[req]
	switch {
	case !ok:
		l.mu.Unlock()
		return api.NewSubmissionError(op, api.CodeInval, api.ErrInvalidArgument)
	case busy:
		l.mu.Unlock()
		return api.NewSubmissionError(op, api.CodeInval, api.ErrRequestBusy)
	}
	l.requests[req] = true
	l.inflight++
	l.mu.Unlock()

	req.Fd = fd
	req.Offset = offset
	req.Result = 0

	err := l.pool.submit(func() {
		res := l.pwrite(fd, buf, offset)
		l.enqueue(func() { l.completeFs(req, res, cb) })
	})
	if err != nil {
		l.mu.Lock()
		l.requests[req] = false
		l.inflight--
		l.mu.Unlock()
		return api.NewSubmissionError(op, api.CodeCanceled, err)
	}
	return nil
}

func (l *Loop) completeFs(req *api.FsRequest, res int, cb api.FsCallback) {
	l.mu.Lock()
	l.requests[req] = false
	l.inflight--
	l.mu.Unlock()

	req.Result = res
	cb(req)
}

// pwrite runs on a worker and folds (n, err) into a write(2) style result.
func (l *Loop) pwrite(fd int, buf []byte, offset int64) (res int) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("file io panicked", "fd", fd, "offset", offset, "panic", r)
			res = api.CodeIO
		}
	}()
	n, err := l.fileIO.Pwrite(fd, buf, offset)
	if err != nil && n <= 0 {
		return api.CodeOf(err)
	}
	return n
}
