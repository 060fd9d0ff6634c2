// Package handler implements the multi-threaded request handler (§4.J): a
// fixed pool of workers, each pulling {connection_context, requested_path}
// tasks off the shared queue and streaming a transfer.Source's content back
// through the connection context. Grounded on
// original_source/mtgf/gfserver-student.h's MultiThreadedHandler
// (mth_start/mth_process/mth_finish) and gfserver.c's per-connection read
// loop, generalized from a single source vtable to any transfer.Source.
package handler

import (
	"context"
	"errors"
	"io"

	"github/sabouaram/getfile/connctx"
	liberr "github/sabouaram/getfile/errors"
	"github/sabouaram/getfile/log"
	"github/sabouaram/getfile/metrics"
	"github/sabouaram/getfile/pool"
	"github/sabouaram/getfile/protocol"
	"github/sabouaram/getfile/server"
	"github/sabouaram/getfile/transfer"
)

const readBufSize = 64 * 1024

// task is one unit of work: serve path back over ctx.
type task struct {
	ctx  *connctx.Context
	path string
}

// Handler dispatches server.Handler.Handle calls onto a fixed pool of
// workers, all reading from the same transfer.Source. It satisfies
// server.Handler so it can be passed directly to server.New.
type Handler struct {
	pool   *pool.Pool[task]
	source transfer.Source
	log    *log.Logger
}

// Start launches numWorkers goroutines, each serving tasks against source.
func Start(numWorkers int, source transfer.Source, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Discard()
	}
	h := &Handler{source: source, log: logger}
	h.pool = pool.Start[task](numWorkers, h.work, nil, nil)
	return h
}

var _ server.Handler = (*Handler)(nil)

// Handle enqueues {ctx, path} for a worker to process. It returns
// immediately; the request is not necessarily finished by the time it
// returns (see §4.J and pool.Pool.Finish for the drain guarantee).
func (h *Handler) Handle(ctx *connctx.Context, path string) {
	metrics.QueueDepth.Inc()
	h.pool.AddTask(task{ctx: ctx, path: path})
}

// Finish blocks until every already-enqueued task has completed, then
// releases the worker pool.
func (h *Handler) Finish() {
	h.pool.Finish(nil, nil)
}

// work is the per-task body run by every worker: start a source session,
// send the header, stream the body, and finish the session. Any source
// failure aborts the connection context rather than sending a partial,
// unterminated response.
func (h *Handler) work(t task, _ any) {
	metrics.QueueDepth.Dec()
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	bgCtx := context.Background()

	session, size, ok := h.source.Start(bgCtx, t.path)
	if !ok {
		metrics.RequestsTotal.WithLabelValues("file_not_found").Inc()
		if err := t.ctx.SendHeader(protocol.StatusFileNotFound, 0); err != nil {
			h.log.WithError(err).Warn("send file-not-found header")
		}
		return
	}

	if err := t.ctx.SendHeader(protocol.StatusOk, size); err != nil {
		metrics.RequestsTotal.WithLabelValues("error").Inc()
		h.log.WithError(err).Warn("send ok header")
		_ = h.source.Finish(session)
		return
	}

	buf := make([]byte, readBufSize)
	var sent uint64
	for sent < size {
		want := uint64(len(buf))
		if remaining := size - sent; remaining < want {
			want = remaining
		}
		n, err := h.source.Read(session, buf[:want])
		if n > 0 {
			if serr := t.ctx.Send(buf[:n]); serr != nil {
				metrics.RequestsTotal.WithLabelValues("error").Inc()
				h.log.WithError(liberr.ErrorGetfileSinkFailed.Error(serr)).Warn("send body chunk")
				t.ctx.Abort()
				_ = h.source.Finish(session)
				return
			}
			sent += uint64(n)
			metrics.BytesServed.Add(float64(n))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			metrics.RequestsTotal.WithLabelValues("error").Inc()
			h.log.WithError(liberr.ErrorGetfileSourceFailed.Error(err)).Warn("read source")
			t.ctx.Abort()
			_ = h.source.Finish(session)
			return
		}
	}

	metrics.RequestsTotal.WithLabelValues("ok").Inc()
	if err := h.source.Finish(session); err != nil {
		h.log.WithError(err).Warn("finish source session")
	}
}
