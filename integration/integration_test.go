package integration_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/getfile/downloader"
	"github/sabouaram/getfile/handler"
	"github/sabouaram/getfile/oracle"
	"github/sabouaram/getfile/server"
	"github/sabouaram/getfile/transfer"
)

var _ = Describe("full-stack transfer", func() {
	var (
		content []byte
		src     transfer.Source
		h       *handler.Handler
		srv     *server.Server
		stop    func()
	)

	startStack := func(workers int) {
		src = oracle.NewInMemory(map[string][]byte{"/payload": content})
		h = handler.Start(workers, src, nil)

		var err error
		srv, err = server.New("127.0.0.1:0", 64, 0, h, nil)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = srv.Serve(ctx)
			close(done)
		}()
		stop = func() {
			cancel()
			<-done
			h.Finish()
			_ = srv.Close()
		}
	}

	AfterEach(func() {
		if stop != nil {
			stop()
			stop = nil
		}
	})

	Context("16 worker threads downloading 1024 requests of the same 1023 KiB payload", func() {
		BeforeEach(func() {
			content = bytes.Repeat([]byte("q"), 1023*1024)
			startStack(16)
		})

		It("delivers every sink exactly the expected bytes", func() {
			sink := transfer.NewMemorySink()
			d := downloader.Start(16, srv.Addr(), sink, nil, nil)

			const requests = 1024
			entries := make([]downloader.WorkloadEntry, requests)
			for i := range entries {
				entries[i] = downloader.WorkloadEntry{
					ReqPath:   "/payload",
					LocalPath: downloader.LocalPath("/payload"),
				}
			}
			workload := downloader.NewWorkload(entries)
			downloader.Run(d, workload, requests)

			succeeded, failed := d.Stats().Snapshot()
			Expect(failed).To(Equal(0))
			Expect(succeeded).To(Equal(requests))

			for _, e := range entries {
				data, committed, ok := sink.Result(e.LocalPath)
				Expect(ok).To(BeTrue())
				Expect(committed).To(BeTrue())
				Expect(data).To(Equal(content))
			}
		})
	})

	DescribeTable("transfer end-to-end for edge-case payload sizes",
		func(size int) {
			if size == 0 {
				content = nil
			} else {
				content = bytes.Repeat([]byte{0}, size)
			}
			startStack(4)

			sink := transfer.NewMemorySink()
			d := downloader.Start(1, srv.Addr(), sink, nil, nil)
			d.Process("/payload", "/out")
			d.Finish()

			succeeded, failed := d.Stats().Snapshot()
			Expect(failed).To(Equal(0))
			Expect(succeeded).To(Equal(1))

			data, committed, ok := sink.Result("/out")
			Expect(ok).To(BeTrue())
			Expect(committed).To(BeTrue())
			Expect(data).To(Equal(content))
		},
		Entry("empty body", 0),
		Entry("10 zero bytes", 10),
		Entry("1 MiB body", 1024*1024),
	)
})
