package config_test

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github/sabouaram/getfile/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server flag binding", func() {
	It("round-trips flags set on the command line into a validated Server", func() {
		cmd := &cobra.Command{Use: "getfile-server"}
		v := viper.New()
		Expect(config.BindServerFlags(cmd, v)).To(Succeed())

		Expect(cmd.Flags().Parse([]string{
			"-p", "127.0.0.1:9000",
			"-m", "128",
			"-t", "8",
			"--content-root", "/srv/files",
		})).To(Succeed())

		cfg, err := config.LoadServer(v)
		Expect(err).To(BeNil())
		Expect(cfg.Addr).To(Equal("127.0.0.1:9000"))
		Expect(cfg.MaxPending).To(Equal(128))
		Expect(cfg.Threads).To(Equal(8))
		Expect(cfg.ContentRoot).To(Equal("/srv/files"))
	})
})

var _ = Describe("Client flag binding", func() {
	It("round-trips flags set on the command line into a validated Client", func() {
		cmd := &cobra.Command{Use: "getfile-client"}
		v := viper.New()
		Expect(config.BindClientFlags(cmd, v)).To(Succeed())

		Expect(cmd.Flags().Parse([]string{
			"-w", "/tmp/workload.txt",
			"-t", "4",
			"-n", "16",
		})).To(Succeed())

		cfg, err := config.LoadClient(v, "example.org", 9000)
		Expect(err).To(BeNil())
		Expect(cfg.WorkloadPath).To(Equal("/tmp/workload.txt"))
		Expect(cfg.Threads).To(Equal(4))
		Expect(cfg.Requests).To(Equal(16))
		Expect(cfg.ServerAddr).To(Equal("example.org:9000"))
	})
})
