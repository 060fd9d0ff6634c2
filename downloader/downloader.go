// Package downloader implements the multi-threaded client (§4.K): a fixed
// pool of workers, each pulling {req_path, local_path} tasks and running a
// full client.Request against the shared server address, reporting success
// or failure through an optional callback. Grounded on
// original_source/mtgf/gfclient_download.c's main loop and
// gfclient-student.h's MultiThreadedClient (mtc_start/mtc_process/
// mtc_finish).
package downloader

import (
	"context"
	"sync"

	"github/sabouaram/getfile/client"
	errpool "github/sabouaram/getfile/errors/pool"
	"github/sabouaram/getfile/log"
	"github/sabouaram/getfile/metrics"
	"github/sabouaram/getfile/pool"
	"github/sabouaram/getfile/protocol"
	"github/sabouaram/getfile/transfer"
)

// task is one download to perform.
type task struct {
	reqPath   string
	localPath string
}

// Report describes the outcome of one task, delivered to an optional
// callback so callers (tests, the CLI) can tally results without the
// downloader itself accumulating anything beyond Stats.
type Report struct {
	ReqPath   string
	LocalPath string
	Success   bool
	Expected  uint64
	Received  uint64
	Err       error
}

// ReportFunc receives one Report per completed (or abandoned) task.
type ReportFunc func(Report)

// Stats aggregates Reports across an entire run.
type Stats struct {
	mu        sync.Mutex
	Succeeded int
	Failed    int
}

func (s *Stats) record(r Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Snapshot returns a copy of the current counts.
func (s *Stats) Snapshot() (succeeded, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Succeeded, s.Failed
}

// Downloader dispatches downloads onto a fixed pool of workers, all
// requesting from the same server address and writing through the same
// sink.
type Downloader struct {
	pool   *pool.Pool[task]
	addr   string
	sink   transfer.Sink
	report ReportFunc
	log    *log.Logger
	stats  *Stats
	errs   errpool.Pool
}

// Start launches numWorkers goroutines, each downloading against addr and
// writing into sink. report, if non-nil, is called once per task in
// addition to the always-updated Stats.
func Start(numWorkers int, addr string, sink transfer.Sink, report ReportFunc, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = log.Discard()
	}
	d := &Downloader{addr: addr, sink: sink, report: report, log: logger, stats: &Stats{}, errs: errpool.New()}
	d.pool = pool.Start[task](numWorkers, d.work, nil, nil)
	return d
}

// Errors returns every transport/protocol error hit across the run's
// workers, combined into one error via errpool.Pool.Error, or nil if every
// task either succeeded or was merely refused (FileNotFound, Invalid are
// recorded in Stats/Report, not here).
func (d *Downloader) Errors() error {
	return d.errs.Error()
}

// Process enqueues a download of reqPath to localPath. It returns
// immediately; see pool.Pool.Finish for the drain guarantee.
func (d *Downloader) Process(reqPath, localPath string) {
	metrics.QueueDepth.Inc()
	d.pool.AddTask(task{reqPath: reqPath, localPath: localPath})
}

// Finish blocks until every already-enqueued task has completed.
func (d *Downloader) Finish() {
	d.pool.Finish(nil, nil)
}

// Stats returns the running totals of succeeded and failed downloads.
func (d *Downloader) Stats() *Stats {
	return d.stats
}

func (d *Downloader) work(t task, _ any) {
	metrics.QueueDepth.Dec()
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	res, err := client.Request(context.Background(), d.addr, t.reqPath, t.localPath, d.sink, nil)
	rep := Report{
		ReqPath:   t.reqPath,
		LocalPath: t.localPath,
		Success:   err == nil && res.Status == protocol.StatusOk,
		Expected:  res.Expected,
		Received:  res.Received,
		Err:       err,
	}
	metrics.BytesReceived.Add(float64(res.Received))
	if !rep.Success && err == nil {
		metrics.RequestsTotal.WithLabelValues(res.Status.String()).Inc()
		d.log.With(log.Fields{"path": t.reqPath, "status": res.Status.String()}).Warn("download refused")
	} else if err != nil {
		metrics.RequestsTotal.WithLabelValues("error").Inc()
		d.log.With(log.Fields{"path": t.reqPath}).WithError(err).Warn("download failed")
		d.errs.Add(err)
	} else {
		metrics.RequestsTotal.WithLabelValues("ok").Inc()
	}

	d.stats.record(rep)
	if d.report != nil {
		d.report(rep)
	}
}
