// Command getfile-server runs the GETFILE server: it binds a listening
// socket, serves file content from a directory through a fixed pool of
// handler workers, and optionally exposes Prometheus metrics on a second
// loopback address. Flags and config wiring follow spf13/cobra's own
// RunE-returns-error convention, translated into the process's exit code
// per §6 (0 success, 1 any fatal error).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github/sabouaram/getfile/config"
	"github/sabouaram/getfile/handler"
	"github/sabouaram/getfile/log"
	"github/sabouaram/getfile/metrics"
	"github/sabouaram/getfile/oracle"
	"github/sabouaram/getfile/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "getfile-server",
		Short:         "Serve files over the GETFILE protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	if err := config.BindServerFlags(cmd, v); err != nil {
		panic(err) // only fails on a programmer error (duplicate/missing flag name)
	}

	return cmd
}

func run(v *viper.Viper) error {
	cfg, err := config.LoadServer(v)
	if err != nil {
		return err
	}

	writers := []io.Writer{os.Stderr}
	if cfg.LogPath != "" {
		f, ferr := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		writers = append(writers, f)
	}
	logger := log.New(cfg.LogLevel, writers...)

	source := oracle.New(cfg.ContentRoot)
	h := handler.Start(cfg.Threads, source, logger)
	defer h.Finish()

	srv, err := server.New(cfg.Addr, cfg.MaxPending, cfg.IdleTimeout.Time(), h, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	if cfg.MetricsAddr != "" {
		m := metrics.Serve(cfg.MetricsAddr)
		defer func() {
			_ = m.Close(context.Background())
		}()
		logger.With(log.Fields{"addr": cfg.MetricsAddr}).Info("metrics exporter listening")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.With(log.Fields{"addr": srv.Addr(), "content_root": cfg.ContentRoot}).Info("getfile-server listening")
	return srv.Serve(ctx)
}
