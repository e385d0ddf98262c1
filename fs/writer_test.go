package fs_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/momentics/hioload-aio/api"
	"github.com/momentics/hioload-aio/box"
	"github.com/momentics/hioload-aio/control"
	"github.com/momentics/hioload-aio/fake"
	"github.com/momentics/hioload-aio/fs"
	"github.com/momentics/hioload-aio/reactor"
)

const testFd = 7

func newLoop(t *testing.T, io reactor.FileIO) *reactor.Loop {
	t.Helper()
	loop, err := reactor.New(reactor.Config{Workers: 2, BatchSize: 16}, reactor.WithFileIO(io))
	require.NoError(t, err)
	t.Cleanup(func() { _ = loop.Close() })
	return loop
}

func run(t *testing.T, loop *reactor.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, loop.Run(ctx))
}

// collect records every completion delivered to a writer.
type collect struct {
	results []fs.WriteResult
}

func (c *collect) handler(r fs.WriteResult) { c.results = append(c.results, r) }

func (c *collect) only(t *testing.T) fs.WriteResult {
	t.Helper()
	require.Len(t, c.results, 1, "completion must fire exactly once")
	return c.results[0]
}

func assertReleased(t *testing.T, loop *reactor.Loop, liveBefore int) {
	t.Helper()
	assert.Equal(t, liveBefore, box.Live(), "write context leaked")
	st := loop.Stats()
	assert.Zero(t, st.LiveFsRequests)
	assert.Zero(t, st.InflightFsRequests)
	assert.Zero(t, st.PendingTasks)
}

func TestWriteSingleAttempt(t *testing.T) {
	io := fake.NewFileIO()
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("hello")))
	run(t, loop)

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.True(t, res.IsEnd())
	assert.Equal(t, int64(5), res.Position)
	assert.Zero(t, res.Code())
	assert.Equal(t, []int64{0}, io.Offsets())
	assert.Equal(t, "hello", string(io.Image()))
	assertReleased(t, loop, live)
}

func TestWritePartialProgressResubmits(t *testing.T) {
	io := fake.NewFileIO(3, 4, 3)
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 100, got.handler)
	require.NoError(t, w.Write([]byte("0123456789")))
	run(t, loop)

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(110), res.Position)
	assert.Equal(t, []int64{100, 103, 107}, io.Offsets())

	calls := io.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "0123456789", string(calls[0].Data))
	assert.Equal(t, "3456789", string(calls[1].Data))
	assert.Equal(t, "789", string(calls[2].Data))
	for _, c := range calls {
		assert.Equal(t, testFd, c.Fd)
	}
	assert.Equal(t, "0123456789", string(io.Image()[100:]))
	assertReleased(t, loop, live)
}

func TestWriteErrorAfterProgress(t *testing.T) {
	io := fake.NewFileIO(2, -int(syscall.ENOSPC))
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("abcdef")))
	run(t, loop)

	res := got.only(t)
	require.Error(t, res.Err)
	assert.False(t, res.IsEnd())
	assert.Equal(t, -int(syscall.ENOSPC), res.Code())
	assert.ErrorIs(t, res.Err, syscall.ENOSPC)
	var ioErr *api.IOError
	require.ErrorAs(t, res.Err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
	assert.Equal(t, []int64{0, 2}, io.Offsets())
	assertReleased(t, loop, live)
}

func TestWriteZeroProgressEnds(t *testing.T) {
	io := fake.NewFileIO(4, 0)
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 10, got.handler)
	require.NoError(t, w.Write([]byte("abcdefgh")))
	run(t, loop)

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(14), res.Position)
	assert.Len(t, io.Calls(), 2)
	assertReleased(t, loop, live)
}

func TestWriteEmptyPayload(t *testing.T) {
	io := fake.NewFileIO()
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 42, got.handler)
	require.NoError(t, w.Write(nil))

	// completes synchronously, no request issued
	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(42), res.Position)
	assert.Empty(t, io.Calls())
	assertReleased(t, loop, live)
}

func TestWriteSubmissionRejected(t *testing.T) {
	io := fake.NewFileIO()
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, -1, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("data")))

	res := got.only(t)
	var subErr *api.SubmissionError
	require.ErrorAs(t, res.Err, &subErr)
	assert.Equal(t, -int(syscall.EBADF), res.Code())
	assert.Empty(t, io.Calls())
	run(t, loop)
	assertReleased(t, loop, live)
}

func TestWriteOnClosedLoop(t *testing.T) {
	loop := newLoop(t, fake.NewFileIO())
	require.NoError(t, loop.Close())
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("data")))

	res := got.only(t)
	assert.ErrorIs(t, res.Err, api.ErrLoopClosed)
	assert.Equal(t, live, box.Live())
}

func TestWriteTwiceRejected(t *testing.T) {
	io := fake.NewFileIO()
	loop := newLoop(t, io)
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("one")))
	err := w.Write([]byte("two"))
	assert.True(t, errors.Is(err, fs.ErrWriterUsed))
	run(t, loop)

	got.only(t)
	assert.Len(t, io.Calls(), 1)
}

func TestWriteNilCompletion(t *testing.T) {
	io := fake.NewFileIO(1)
	loop := newLoop(t, io)
	live := box.Live()

	w := fs.NewFileWriter(loop, testFd, 0, 0, nil)
	require.NoError(t, w.Write([]byte("xy")))
	run(t, loop)

	assert.Equal(t, "xy", string(io.Image()))
	assertReleased(t, loop, live)
}

// Random partial-progress scripts always converge to the full payload at
// strictly increasing offsets.
func TestWriteRandomPartialScripts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		size := 1 + rng.Intn(200)
		payload := make([]byte, size)
		rng.Read(payload)
		var script []int
		for left := size; left > 0; {
			n := 1 + rng.Intn(left)
			script = append(script, n)
			left -= n
		}
		position := int64(rng.Intn(64))

		io := fake.NewFileIO(script...)
		loop := newLoop(t, io)
		live := box.Live()
		var got collect

		w := fs.NewFileWriter(loop, testFd, 0, position, got.handler)
		require.NoError(t, w.Write(payload))
		run(t, loop)

		res := got.only(t)
		require.NoError(t, res.Err)
		assert.Equal(t, position+int64(size), res.Position)
		offs := io.Offsets()
		require.Len(t, offs, len(script))
		assert.Equal(t, position, offs[0])
		for j := 1; j < len(offs); j++ {
			assert.Greater(t, offs[j], offs[j-1])
		}
		assert.Equal(t, payload, io.Image()[position:])
		assertReleased(t, loop, live)
	}
}

func TestConcurrentWritersOnOneLoop(t *testing.T) {
	io := fake.NewFileIO()
	loop := newLoop(t, io)
	live := box.Live()
	var got collect

	for i := 0; i < 10; i++ {
		w := fs.NewFileWriter(loop, testFd, 0, int64(i*4), got.handler)
		require.NoError(t, w.Write([]byte("abcd")))
	}
	run(t, loop)

	require.Len(t, got.results, 10)
	for _, r := range got.results {
		require.NoError(t, r.Err)
	}
	assert.Equal(t, "abcdabcdabcdabcdabcdabcdabcdabcdabcdabcd", string(io.Image()))
	assertReleased(t, loop, live)
}

func TestWriteRecordsMetricsAndSpan(t *testing.T) {
	io := fake.NewFileIO(2, 2)
	loop := newLoop(t, io)
	metrics, err := control.NewPrometheusCollector("test")
	require.NoError(t, err)
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler,
		fs.WithMetrics(metrics), fs.WithTracer(tp.Tracer("test")))
	require.NoError(t, w.Write([]byte("abcd")))
	run(t, loop)
	got.only(t)

	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(`
# HELP test_write_bytes_total Bytes confirmed written by finalized write operations.
# TYPE test_write_bytes_total counter
test_write_bytes_total 4
# HELP test_write_requests_total Write requests handed to the reactor, rejected ones included.
# TYPE test_write_requests_total counter
test_write_requests_total 2
# HELP test_writes_total Finalized write operations by result.
# TYPE test_writes_total counter
test_writes_total{result="end"} 1
`), "test_write_bytes_total", "test_write_requests_total", "test_writes_total"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "fs.write", spans[0].Name())
	assert.Len(t, spans[0].Events(), 2)
}

func TestWriteRealFile(t *testing.T) {
	if _, err := reactor.SystemFileIO().Pwrite(-1, nil, 0); errors.Is(err, syscall.ENOSYS) {
		t.Skip("positional writes unsupported on this platform")
	}
	path := filepath.Join(t.TempDir(), "out.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("......")
	require.NoError(t, err)

	loop, err := reactor.New(reactor.Config{Workers: 1, BatchSize: 4})
	require.NoError(t, err)
	defer loop.Close()
	var got collect

	w := fs.NewFileWriter(loop, int(f.Fd()), 0, 6, got.handler)
	require.NoError(t, w.Write([]byte("payload")))
	run(t, loop)

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(13), res.Position)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "......payload", string(content))
}

func TestWriteTwoPartialAttempts(t *testing.T) {
	io := fake.NewFileIO(4, 6)
	loop := newLoop(t, io)
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 20, got.handler)
	require.NoError(t, w.Write([]byte("abcdefghij")))
	run(t, loop)

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(30), res.Position)
	assert.Equal(t, []int64{20, 24}, io.Offsets())
}

func TestWriteFirstAttemptFails(t *testing.T) {
	io := fake.NewFileIO(-1)
	loop := newLoop(t, io)
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("abcde")))
	run(t, loop)

	res := got.only(t)
	assert.Equal(t, -1, res.Code())
	assert.Len(t, io.Calls(), 1)
}

func TestWriteEmptyPayloadAtPosition(t *testing.T) {
	io := fake.NewFileIO()
	loop := newLoop(t, io)
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 100, got.handler)
	require.NoError(t, w.Write([]byte{}))

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(100), res.Position)
	assert.Empty(t, io.Calls())
}

// stagedReactor hands write submissions to the test instead of doing I/O.
// Submissions past accept are rejected. With inline set an accepted write
// completes in full before SubmitWrite returns; otherwise it is held until
// the test delivers it.
type stagedReactor struct {
	api.Reactor
	accept  int
	inline  bool
	submits int
	live    map[*api.FsRequest]bool
	held    *api.FsRequest
	heldCb  api.FsCallback
}

func newStagedReactor(accept int) *stagedReactor {
	return &stagedReactor{accept: accept, live: make(map[*api.FsRequest]bool)}
}

func (r *stagedReactor) NewFsRequest() *api.FsRequest {
	req := &api.FsRequest{}
	r.live[req] = true
	return req
}

func (r *stagedReactor) ReleaseFsRequest(req *api.FsRequest) {
	if !r.live[req] {
		panic("release of unknown request")
	}
	delete(r.live, req)
}

func (r *stagedReactor) SubmitWrite(req *api.FsRequest, _ int, buf []byte, _ int64, cb api.FsCallback) error {
	r.submits++
	if r.submits > r.accept {
		return api.NewSubmissionError("write", api.CodeInval, api.ErrInvalidArgument)
	}
	if r.inline {
		req.Result = len(buf)
		cb(req)
		return nil
	}
	r.held, r.heldCb = req, cb
	return nil
}

func (r *stagedReactor) Now() time.Time { return time.Now() }

// deliver completes the held request with result.
func (r *stagedReactor) deliver(t *testing.T, result int) {
	t.Helper()
	require.NotNil(t, r.held, "no request held")
	req, cb := r.held, r.heldCb
	r.held, r.heldCb = nil, nil
	req.Result = result
	cb(req)
}

// eventLog records collector calls in order.
type eventLog struct {
	events []string
}

func (e *eventLog) WriteSubmitted(n int) {
	e.events = append(e.events, fmt.Sprintf("submitted %d", n))
}

func (e *eventLog) WriteFinished(written int64, err error) {
	e.events = append(e.events, fmt.Sprintf("finished %d failed=%t", written, err != nil))
}

func (e *eventLog) TimerTicked(string) {}

func TestCloseRefusedUntilCompletionDelivered(t *testing.T) {
	loop := newLoop(t, fake.NewFileIO())
	live := box.Live()
	var got collect

	w := fs.NewFileWriter(loop, testFd, 0, 0, got.handler)
	require.NoError(t, w.Write([]byte("abcd")))
	require.Eventually(t, func() bool { return loop.Stats().PendingTasks == 1 },
		time.Second, time.Millisecond)

	assert.ErrorIs(t, loop.Close(), reactor.ErrLoopBusy)
	assert.Empty(t, got.results)
	assert.Equal(t, live+1, box.Live())

	run(t, loop)
	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(4), res.Position)
	assertReleased(t, loop, live)
	require.NoError(t, loop.Close())
}

func TestWriteResubmissionRejected(t *testing.T) {
	r := newStagedReactor(1)
	live := box.Live()
	var got collect
	var log eventLog

	w := fs.NewFileWriter(r, testFd, 0, 0, got.handler, fs.WithMetrics(&log))
	require.NoError(t, w.Write([]byte("abcd")))
	assert.Empty(t, got.results)

	r.deliver(t, 2)

	res := got.only(t)
	var subErr *api.SubmissionError
	require.ErrorAs(t, res.Err, &subErr)
	assert.Equal(t, api.CodeInval, res.Code())
	assert.Equal(t, 2, r.submits)
	assert.Empty(t, r.live, "request not released")
	assert.Equal(t, live, box.Live(), "write context leaked")
	assert.Equal(t, []string{"submitted 4", "submitted 2", "finished 2 failed=true"}, log.events)
}

func TestWriteCountedBeforeInlineCompletion(t *testing.T) {
	r := newStagedReactor(1)
	r.inline = true
	live := box.Live()
	var got collect
	var log eventLog

	w := fs.NewFileWriter(r, testFd, 0, 0, got.handler, fs.WithMetrics(&log))
	require.NoError(t, w.Write([]byte("abcd")))

	res := got.only(t)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(4), res.Position)
	assert.Equal(t, []string{"submitted 4", "finished 4 failed=false"}, log.events)
	assert.Empty(t, r.live)
	assert.Equal(t, live, box.Live())
}

func TestRejectedWriteCounted(t *testing.T) {
	loop := newLoop(t, fake.NewFileIO())
	metrics, err := control.NewPrometheusCollector("rej")
	require.NoError(t, err)
	var got collect

	w := fs.NewFileWriter(loop, -1, 0, 0, got.handler, fs.WithMetrics(metrics))
	require.NoError(t, w.Write([]byte("data")))
	require.Error(t, got.only(t).Err)

	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(`
# HELP rej_write_requests_total Write requests handed to the reactor, rejected ones included.
# TYPE rej_write_requests_total counter
rej_write_requests_total 1
# HELP rej_writes_total Finalized write operations by result.
# TYPE rej_writes_total counter
rej_writes_total{result="error"} 1
`), "rej_write_requests_total", "rej_writes_total"))
}
