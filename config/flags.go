package config

import (
	"net"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	liberr "github/sabouaram/getfile/errors"
	"github/sabouaram/getfile/file/perm"
)

// permDecodeHook lets viper decode a "0644"-style string straight into a
// perm.Perm field. file/perm.ViperDecoderHook() returns a hook typed
// against github.com/go-viper/mapstructure/v2, which is not the
// mapstructure viper itself decodes with (github.com/mitchellh/mapstructure,
// per _examples/nabbar-golib's own go.mod); this hook calls the same
// perm.Parse the teacher's hook wraps, against the package viper actually
// uses.
func permDecodeHook() mapstructure.DecodeHookFuncType {
	permType := reflect.TypeOf(perm.Perm(0))
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != permType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return perm.Parse(s)
	}
}

// BindServerFlags registers spec §6's server CLI surface (-p, -m, -t) on
// cmd and binds each one into v, the same RegisterFlag-then-BindPFlag
// sequence _examples/nabbar-golib/config/components/log uses.
func BindServerFlags(cmd *cobra.Command, v *viper.Viper) error {
	d := DefaultServer()

	cmd.Flags().StringP("addr", "p", d.Addr, "listen address, host:port")
	cmd.Flags().IntP("max-pending", "m", d.MaxPending, "accept backlog hint")
	cmd.Flags().IntP("threads", "t", d.Threads, "number of handler worker goroutines")
	cmd.Flags().String("content-root", d.ContentRoot, "directory served by the content oracle")
	cmd.Flags().String("metrics-addr", d.MetricsAddr, "loopback address for the Prometheus exporter (empty disables it)")
	cmd.Flags().String("log-level", d.LogLevel, "debug, info, warn, or error")
	cmd.Flags().String("log-path", d.LogPath, "optional log file path")

	for flag, key := range map[string]string{
		"addr":         "addr",
		"max-pending":  "max_pending",
		"threads":      "threads",
		"content-root": "content_root",
		"metrics-addr": "metrics_addr",
		"log-level":    "log_level",
		"log-path":     "log_path",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

// BindClientFlags registers spec §6's client CLI surface (-s, -p, -w, -t,
// -n) on cmd and binds each one into v.
func BindClientFlags(cmd *cobra.Command, v *viper.Viper) error {
	d := DefaultClient()

	cmd.Flags().StringP("server", "s", "127.0.0.1", "server hostname or address")
	cmd.Flags().IntP("port", "p", 8888, "server port")
	cmd.Flags().StringP("workload", "w", "", "workload file of \"request-path local-path\" pairs")
	cmd.Flags().IntP("threads", "t", d.Threads, "number of downloader worker goroutines")
	cmd.Flags().IntP("requests", "n", d.Requests, "number of workload entries to process")
	cmd.Flags().String("log-level", d.LogLevel, "debug, info, warn, or error")
	cmd.Flags().String("log-path", d.LogPath, "optional log file path")
	cmd.Flags().String("file-perm", d.FilePerm.String(), "mode downloaded files are created with (octal or symbolic)")
	cmd.Flags().String("dir-perm", d.DirPerm.String(), "mode missing destination directories are created with")

	for flag, key := range map[string]string{
		"workload":  "workload_path",
		"threads":   "threads",
		"requests":  "requests",
		"log-level": "log_level",
		"log-path":  "log_path",
		"file-perm": "file_perm",
		"dir-perm":  "dir_perm",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

// LoadServer decodes and validates a Server config out of v. Callers bind
// flags/env/config-file sources into v before calling this.
func LoadServer(v *viper.Viper) (Server, liberr.Error) {
	cfg := DefaultServer()
	if err := v.Unmarshal(&cfg); err != nil {
		return Server{}, liberr.ErrorGetfileConfigInvalid.Error(err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// LoadClient decodes and validates a Client config out of v. The -s/-p
// client flags are combined into ServerAddr separately, since they map to
// two flags but one config field.
func LoadClient(v *viper.Viper, serverHost string, serverPort int) (Client, liberr.Error) {
	cfg := DefaultClient()
	hook := viper.DecoderConfigOption(func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = permDecodeHook()
	})
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Client{}, liberr.ErrorGetfileConfigInvalid.Error(err)
	}
	cfg.ServerAddr = net.JoinHostPort(serverHost, strconv.Itoa(serverPort))
	if err := cfg.Validate(); err != nil {
		return Client{}, err
	}
	return cfg, nil
}
