package downloader

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// ErrEmptyWorkload is returned when a workload file contains no usable
// entries.
var ErrEmptyWorkload = errors.New("downloader: workload file has no entries")

// WorkloadEntry is one line of a workload file: the request path to fetch
// and, optionally, the local destination to write it to.
type WorkloadEntry struct {
	ReqPath   string
	LocalPath string
}

// LoadWorkload reads "request-path local-path" pairs, one per line, from
// path, matching the behavior of the `-w workload_path` flag in
// original_source/mtgf/gfclient_download.c (workload.c itself was never
// retrieved, only its call sites — workload_init/workload_get_path — so
// this format is inferred from how the downloader consumes each entry, not
// copied from source). Blank lines are skipped. A line with only a
// request path gets its local path derived via LocalPath at download time.
func LoadWorkload(path string) ([]WorkloadEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []WorkloadEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		e := WorkloadEntry{ReqPath: fields[0]}
		if len(fields) > 1 {
			e.LocalPath = fields[1]
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyWorkload
	}
	return entries, nil
}

// Workload cycles through a fixed set of request entries, safe for
// concurrent use by multiple workers pulling the next entry to request.
type Workload struct {
	entries []WorkloadEntry
	next    atomic.Uint64
}

// NewWorkload wraps entries for concurrent round-robin iteration.
func NewWorkload(entries []WorkloadEntry) *Workload {
	return &Workload{entries: entries}
}

// Next returns the next entry in round-robin order, filling in a derived
// LocalPath if the entry did not specify one.
func (w *Workload) Next() WorkloadEntry {
	i := w.next.Add(1) - 1
	e := w.entries[i%uint64(len(w.entries))]
	if e.LocalPath == "" {
		e.LocalPath = LocalPath(e.ReqPath)
	}
	return e
}

// localPathCounter is shared by LocalPath across calls so repeated
// downloads of the same req_path land in distinct files, mirroring
// gfclient_download.c's localPath() static counter.
var localPathCounter atomic.Uint64

// LocalPath derives a destination file name from reqPath the way
// gfclient_download.c's localPath() does: strip the leading '/' and
// append a zero-padded, ever-increasing counter.
func LocalPath(reqPath string) string {
	n := localPathCounter.Add(1) - 1
	trimmed := strings.TrimPrefix(reqPath, "/")
	return fmt.Sprintf("%s-%06d", trimmed, n)
}

// Run downloads n requests from w against d, blocking until every task
// this call enqueued has completed. It is the shape gfclient_download.c's
// main loop takes: iterate n times, pull the next workload entry, enqueue
// it.
func Run(d *Downloader, w *Workload, n int) {
	for i := 0; i < n; i++ {
		e := w.Next()
		d.Process(e.ReqPath, e.LocalPath)
	}
	d.Finish()
}
