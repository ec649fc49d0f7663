package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zoobzio/mirror"
)

// Document is the value mirrored by the CLI: any top-level object.
type Document = map[string]any

// options holds the resolved command line and environment configuration.
type options struct {
	File     string
	Format   string
	Interval time.Duration
	LogLevel string
}

// app carries state shared by all subcommands.
type app struct {
	v    *viper.Viper
	opts options
	log  *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Inspect and edit a mirrored settings file",
		Long: `mirror reads, writes and watches a single settings file the same way an
application using the mirror package does: saves are atomic and the file is
polled for changes made by other programs.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync() //nolint:errcheck // stderr sync is best effort
			}
		},
	}

	addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newGetCommand(a),
		newSetCommand(a),
		newWatchCommand(a),
	)
	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "Path to the mirrored file")
	fs.String("format", "", "File format: json, yaml, toml, plist or cbor (default: from extension)")
	fs.Duration("interval", mirror.DefaultInterval, "Wait between checks for external changes")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
}

// setup resolves configuration from flags and MIRROR_* environment
// variables, then builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	a.v.SetEnvPrefix("MIRROR")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	a.opts = options{
		File:     a.v.GetString("file"),
		Format:   a.v.GetString("format"),
		Interval: a.v.GetDuration("interval"),
		LogLevel: a.v.GetString("log-level"),
	}
	if err := a.opts.Validate(); err != nil {
		return err
	}

	log, err := newLogger(a.opts.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	hookSignals(log)
	return nil
}

// Validate checks the resolved options.
func (o options) Validate() error {
	if o.File == "" {
		return errors.New("no file given: use --file or MIRROR_FILE")
	}
	if o.Format != "" {
		if _, ok := mirror.CodecByName(o.Format); !ok {
			return fmt.Errorf("unknown format %q", o.Format)
		}
	}
	if o.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", o.Interval)
	}
	return nil
}

// codec returns the codec named by --format, or the one matching the file
// extension.
func (o options) codec() mirror.Codec {
	if codec, ok := mirror.CodecByName(o.Format); ok {
		return codec
	}
	return mirror.CodecForPath(o.File)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	return config.Build()
}

// newMonitor builds a monitor for the configured file. Failures are logged
// through the signal hooks, so no OnError callback is set here.
func (a *app) newMonitor() *mirror.Monitor[Document] {
	return mirror.New(a.opts.File, Document{}).
		Codec(a.opts.codec()).
		Interval(a.opts.Interval)
}
