package config_test

import (
	liberr "github/sabouaram/getfile/errors"

	"github/sabouaram/getfile/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server configuration", func() {
	It("validates the documented defaults", func() {
		c := config.DefaultServer()
		Expect(c.Validate()).To(BeNil())
	})

	It("rejects an empty content root", func() {
		c := config.DefaultServer()
		c.ContentRoot = ""
		err := c.Validate()
		Expect(err).NotTo(BeNil())
		Expect(liberr.Has(err, liberr.ErrorGetfileConfigInvalid)).To(BeTrue())
	})

	It("rejects zero worker threads", func() {
		c := config.DefaultServer()
		c.Threads = 0
		Expect(c.Validate()).NotTo(BeNil())
	})

	It("rejects a malformed listen address", func() {
		c := config.DefaultServer()
		c.Addr = "not-a-host-port"
		Expect(c.Validate()).NotTo(BeNil())
	})

	It("rejects an unknown log level", func() {
		c := config.DefaultServer()
		c.LogLevel = "verbose"
		Expect(c.Validate()).NotTo(BeNil())
	})
})

var _ = Describe("Client configuration", func() {
	It("validates the documented defaults", func() {
		c := config.DefaultClient()
		c.WorkloadPath = "/tmp/workload.txt"
		Expect(c.Validate()).To(BeNil())
	})

	It("rejects a missing workload path", func() {
		c := config.DefaultClient()
		Expect(c.Validate()).NotTo(BeNil())
	})

	It("rejects zero requests", func() {
		c := config.DefaultClient()
		c.WorkloadPath = "/tmp/workload.txt"
		c.Requests = 0
		Expect(c.Validate()).NotTo(BeNil())
	})
})
