// Command getfile-client drives a workload file against a GETFILE server
// through a fixed pool of downloader workers, reporting a final
// succeeded/failed tally. Exit codes follow §6: 0 success, 1 any fatal
// error (including a non-zero failed count).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github/sabouaram/getfile/config"
	"github/sabouaram/getfile/downloader"
	"github/sabouaram/getfile/log"
	"github/sabouaram/getfile/transfer"
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
		Use:           "getfile-client",
		Short:         "Download a workload of files over the GETFILE protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := cmd.Flags().GetString("server")
			if err != nil {
				return err
			}
			port, err := cmd.Flags().GetInt("port")
			if err != nil {
				return err
			}
			return run(v, host, port)
		},
	}

	if err := config.BindClientFlags(cmd, v); err != nil {
		panic(err) // only fails on a programmer error (duplicate/missing flag name)
	}

	return cmd
}

func run(v *viper.Viper, serverHost string, serverPort int) error {
	cfg, err := config.LoadClient(v, serverHost, serverPort)
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

	entries, err := downloader.LoadWorkload(cfg.WorkloadPath)
	if err != nil {
		return err
	}
	workload := downloader.NewWorkload(entries)

	sink := transfer.NewFileSink(cfg.FilePerm.FileMode(), cfg.DirPerm.FileMode())
	d := downloader.Start(cfg.Threads, cfg.ServerAddr, sink, func(r downloader.Report) {
		fields := log.Fields{"path": r.ReqPath, "local_path": r.LocalPath, "received": r.Received, "expected": r.Expected}
		if r.Success {
			logger.With(fields).Debug("download complete")
			return
		}
		if r.Err != nil {
			logger.With(fields).WithError(r.Err).Warn("download failed")
			return
		}
		logger.With(fields).Warn("download refused")
	}, logger)

	downloader.Run(d, workload, cfg.Requests)

	succeeded, failed := d.Stats().Snapshot()
	fmt.Printf("succeeded=%d failed=%d\n", succeeded, failed)
	if transportErr := d.Errors(); transportErr != nil {
		logger.WithError(transportErr).Warn("one or more downloads hit a transport error")
	}
	if failed > 0 {
		return fmt.Errorf("getfile-client: %d of %d requests failed", failed, succeeded+failed)
	}
	return nil
}
