// File: fs/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FileWriter drives repeated positional writes through the reactor. The write
// context is boxed while a request is in flight; the request carries only the
// box handle. Completions borrow the context, and finalization takes it back
// exactly once before the completion handler runs.

package fs

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/box"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/internal/logging"
)

const tracerName = "github.com/momentics/hioload-aio/fs"

// Option customizes a FileWriter.
type Option func(*options)

type options struct {
	log     logging.Logger
	metrics control.Collector
	tracer  trace.Tracer
	ctx     context.Context
}

// WithLogger sets the writer logger.
func WithLogger(log logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c control.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithTracer sets the tracer used for the per-write span.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithContext sets the parent context of the per-write span.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// writeContext is the state of one write operation. While a request is in
// flight it is owned by its box; the FileWriter no longer references it.
type writeContext struct {
	loop     api.Reactor
	fd       int
	offset   int // reserved
	position int64
	written  int64
	data     []byte
	onWrite  func(WriteResult)
	attempts int

	log     logging.Logger
	metrics control.Collector
	tracer  trace.Tracer
	spanCtx context.Context
	span    trace.Span
}

func (c *writeContext) curPos() int64 { return c.position + c.written }

// FileWriter writes one payload to a caller-owned descriptor at a fixed
// starting position. It is single use.
type FileWriter struct {
	ctx *writeContext
}

// NewFileWriter binds a writer to loop and fd. Writing starts at position;
// offset is accepted and reserved. completion receives exactly one
// WriteResult per Write, on the loop goroutine.
func NewFileWriter(loop api.Reactor, fd int, offset int, position int64, completion func(WriteResult), opts ...Option) *FileWriter {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.NewNopLogger()
	}
	if o.metrics == nil {
		o.metrics = control.NopCollector{}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return &FileWriter{ctx: &writeContext{
		loop:     loop,
		fd:       fd,
		offset:   offset,
		position: position,
		onWrite:  completion,
		log:      o.log.With("component", "fs.writer", "fd", fd),
		metrics:  o.metrics,
		tracer:   o.tracer,
		spanCtx:  o.ctx,
	}}
}

// Write starts writing data. The caller must not modify data until the
// completion handler ran. An empty payload completes immediately with the
// starting position and issues no request. A writer accepts one Write; later
// calls return ErrWriterUsed.
func (w *FileWriter) Write(data []byte) error {
	c := w.ctx
	if c == nil {
		return ErrWriterUsed
	}
	w.ctx = nil
	_, c.span = c.tracer.Start(c.spanCtx, "fs.write", trace.WithAttributes(
		attribute.Int("fd", c.fd),
		attribute.Int64("position", c.position),
		attribute.Int("bytes", len(data)),
	))

	if len(data) == 0 {
		onWrite, pos := c.onWrite, c.position
		c.close(WriteResult{Position: pos})
		if onWrite != nil {
			onWrite(WriteResult{Position: pos})
		}
		return nil
	}

	c.data = data
	attemptWrite(box.New(c))
	return nil
}

// attemptWrite submits the unwritten tail of the payload.
func attemptWrite(h box.Handle) {
	c := box.Peek[*writeContext](h)
	c.attempts++
	req := c.loop.NewFsRequest()
	req.Data = uintptr(h)

	off := c.curPos()
	rest := c.data[c.written:]
	c.span.AddEvent("attempt", trace.WithAttributes(
		attribute.Int("attempt", c.attempts),
		attribute.Int64("offset", off),
		attribute.Int("bytes", len(rest)),
	))
	// counted first: the completion may run before SubmitWrite returns
	c.metrics.WriteSubmitted(len(rest))
	if err := c.loop.SubmitWrite(req, c.fd, rest, off, onWriteEach); err != nil {
		c.loop.ReleaseFsRequest(req)
		finish(h, WriteResult{Err: err})
	}
}

// onWriteEach is the reactor completion for every attempt.
func onWriteEach(req *api.FsRequest) {
	h := box.Handle(req.Data)
	c := box.Peek[*writeContext](h)
	res := req.Result
	c.loop.ReleaseFsRequest(req)

	switch {
	case res < 0:
		finish(h, WriteResult{Err: &api.IOError{Op: "write", Code: res}})
	case res == 0:
		finish(h, WriteResult{Position: c.curPos()})
	default:
		c.written += int64(res)
		if c.written >= int64(len(c.data)) {
			finish(h, WriteResult{Position: c.curPos()})
			return
		}
		c.log.Debug("partial write", "written", c.written, "total", len(c.data))
		attemptWrite(h)
	}
}

// finish reclaims the context, releases it and delivers res.
func finish(h box.Handle, res WriteResult) {
	c := box.Take[*writeContext](h)
	onWrite := c.onWrite
	c.close(res)
	if onWrite != nil {
		onWrite(res)
	}
}

// close ends the span and records the outcome. The context is unusable
// afterwards.
func (c *writeContext) close(res WriteResult) {
	c.metrics.WriteFinished(c.written, res.Err)
	if res.Err != nil {
		c.span.RecordError(res.Err)
		c.span.SetStatus(codes.Error, res.Err.Error())
		c.log.Debug("write failed", "written", c.written, "code", res.Code(), "error", res.Err)
	} else {
		c.span.SetAttributes(attribute.Int64("final_position", res.Position))
		c.log.Debug("write finished", "written", c.written, "position", res.Position, "attempts", c.attempts)
	}
	c.span.End()
	c.data = nil
	c.onWrite = nil
	c.spanCtx = nil
}
