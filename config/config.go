// Package config holds the Server and Client configuration structs loaded
// by cmd/getfile-server and cmd/getfile-client: flags bound through
// github.com/spf13/pflag and github.com/spf13/viper, decoded into these
// structs, and checked with github.com/go-playground/validator/v10, the
// same load-then-validate shape as _examples/nabbar-golib's component
// configs (e.g. httpserver.ServerConfig.Validate), simplified to GETFILE's
// TCP-only, no-TLS surface.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github/sabouaram/getfile/duration"
	liberr "github/sabouaram/getfile/errors"
	"github/sabouaram/getfile/file/perm"
)

// Server is the getfile-server process configuration (spec §6's CLI
// surface plus the ambient knobs the teacher's config structs always
// carry: timeouts and logging).
type Server struct {
	// Addr is the listen address, host:port. Host may be empty to bind
	// all interfaces.
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" toml:"addr" validate:"required,hostname_port"`

	// MaxPending is the backlog hint passed to the listener (-m).
	MaxPending int `mapstructure:"max_pending" json:"max_pending" yaml:"max_pending" toml:"max_pending" validate:"gte=0"`

	// Threads is the handler worker pool size (-t).
	Threads int `mapstructure:"threads" json:"threads" yaml:"threads" toml:"threads" validate:"gte=1"`

	// AcceptTimeout is decoded from configuration but not passed to the
	// server: server.Serve checks for cancellation on its own fixed 50ms
	// accept tick.
	AcceptTimeout duration.Duration `mapstructure:"accept_timeout" json:"accept_timeout" yaml:"accept_timeout" toml:"accept_timeout"`

	// IdleTimeout bounds how long a connection may sit idle mid-header
	// before the server gives up on it.
	IdleTimeout duration.Duration `mapstructure:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`

	// ContentRoot is the directory the content oracle serves paths
	// relative to.
	ContentRoot string `mapstructure:"content_root" json:"content_root" yaml:"content_root" toml:"content_root" validate:"required"`

	// MetricsAddr, if non-empty, is the loopback address the Prometheus
	// exporter listens on (empty disables it).
	MetricsAddr string `mapstructure:"metrics_addr" json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`

	// LogLevel is one of the levels log.New accepts (debug, info, warn,
	// error).
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogPath, if non-empty, appends log output to this file in addition
	// to stderr.
	LogPath string `mapstructure:"log_path" json:"log_path" yaml:"log_path" toml:"log_path"`
}

// Client is the getfile-client process configuration (spec §6's client CLI
// surface).
type Client struct {
	// ServerAddr is the server's host:port (-s/-p combined).
	ServerAddr string `mapstructure:"server_addr" json:"server_addr" yaml:"server_addr" toml:"server_addr" validate:"required,hostname_port"`

	// WorkloadPath points at a file of "request-path local-path" pairs
	// (-w).
	WorkloadPath string `mapstructure:"workload_path" json:"workload_path" yaml:"workload_path" toml:"workload_path" validate:"required"`

	// Threads is the downloader worker pool size (-t).
	Threads int `mapstructure:"threads" json:"threads" yaml:"threads" toml:"threads" validate:"gte=1"`

	// Requests is the total number of workload entries to process (-n).
	Requests int `mapstructure:"requests" json:"requests" yaml:"requests" toml:"requests" validate:"gte=1"`

	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogPath  string `mapstructure:"log_path" json:"log_path" yaml:"log_path" toml:"log_path"`

	// FilePerm is the mode FileSink creates downloaded files with.
	FilePerm perm.Perm `mapstructure:"file_perm" json:"file_perm" yaml:"file_perm" toml:"file_perm"`

	// DirPerm is the mode FileSink creates missing intermediate
	// directories with.
	DirPerm perm.Perm `mapstructure:"dir_perm" json:"dir_perm" yaml:"dir_perm" toml:"dir_perm"`
}

// DefaultServer returns a Server with the same baseline values the CLI
// flags default to.
func DefaultServer() Server {
	return Server{
		Addr:          ":8888",
		MaxPending:    64,
		Threads:       4,
		AcceptTimeout: duration.Seconds(1),
		IdleTimeout:   duration.Seconds(30),
		ContentRoot:   ".",
		LogLevel:      "info",
	}
}

// DefaultClient returns a Client with the same baseline values the CLI
// flags default to.
func DefaultClient() Client {
	return Client{
		ServerAddr: "127.0.0.1:8888",
		Threads:    1,
		Requests:   1,
		LogLevel:   "info",
		FilePerm:   perm.ParseFileMode(0o644),
		DirPerm:    perm.ParseFileMode(0o755),
	}
}

func (c Server) Validate() liberr.Error {
	return validateStruct(c)
}

func (c Client) Validate() liberr.Error {
	return validateStruct(c)
}

func validateStruct(s interface{}) liberr.Error {
	val := validator.New()
	err := val.Struct(s)
	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return liberr.ErrorGetfileConfigInvalid.Error(e)
	}

	out := liberr.ErrorGetfileConfigInvalid.Error(nil)
	for _, e := range err.(validator.ValidationErrors) {
		out.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
	}

	if out.HasParent() {
		return out
	}
	return nil
}
