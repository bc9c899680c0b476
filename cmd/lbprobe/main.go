// Command lbprobe detects load balancers behind a URL by resolving
// its hostname and fetching it many times, looking for multiple
// addresses, different Server headers, and varying response times.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/lbprobe/lbprobe/internal/config"
	"github.com/lbprobe/lbprobe/internal/engine"
	"github.com/lbprobe/lbprobe/internal/logx"
	"github.com/lbprobe/lbprobe/internal/report"
	"github.com/lbprobe/lbprobe/internal/version"
	colorable "github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Options contains the options you can set from the CLI.
type Options struct {
	ConfigFile string
	Count      int
	Delay      time.Duration
	Resolver   string
	SkipFailed bool
	Threshold  time.Duration
	Timeout    time.Duration
	UserAgent  string
	Verbose    bool
}

func main() {
	rootCmd := newRootCommand(colorable.NewColorableStdout(), !color.NoColor)
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("lbprobe failed")
		os.Exit(1)
	}
}

// newRootCommand creates the root command writing the report to stdout.
func newRootCommand(stdout io.Writer, useColor bool) *cobra.Command {
	var globalOptions Options
	defaults := config.Default()
	rootCmd := &cobra.Command{
		Use:           "lbprobe [URL]",
		Short:         "lbprobe detects load balancers behind a URL",
		Args:          cobra.MaximumNArgs(1),
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mainWithOptions(cmd.Context(), cmd.Flags(), args, &globalOptions, stdout, useColor)
		},
	}
	rootCmd.SetVersionTemplate("{{ .Version }}\n")
	flags := rootCmd.Flags()

	flags.StringVarP(
		&globalOptions.ConfigFile,
		"config",
		"c",
		"",
		"read settings from the given YAML file",
	)

	flags.IntVarP(
		&globalOptions.Count,
		"count",
		"n",
		defaults.Count,
		"number of DNS lookups and of HTTP requests",
	)

	flags.DurationVar(
		&globalOptions.Delay,
		"delay",
		defaults.Delay,
		"minimum interval between the starts of two lookups or requests",
	)

	flags.StringVar(
		&globalOptions.Resolver,
		"resolver",
		"",
		"DNS resolver address as IP[:PORT] (default: the system resolver)",
	)

	flags.BoolVar(
		&globalOptions.SkipFailed,
		"skip-failed",
		false,
		"skip failed HTTP requests instead of discarding all the samples",
	)

	flags.DurationVar(
		&globalOptions.Threshold,
		"threshold",
		defaults.Threshold,
		"response time spread above which the variation is significant",
	)

	flags.DurationVar(
		&globalOptions.Timeout,
		"timeout",
		defaults.Timeout,
		"timeout of each HTTP request (zero means no timeout)",
	)

	flags.StringVar(
		&globalOptions.UserAgent,
		"user-agent",
		defaults.UserAgent,
		"User-Agent header to send",
	)

	flags.BoolVarP(
		&globalOptions.Verbose,
		"verbose",
		"v",
		false,
		"increase verbosity level",
	)

	return rootCmd
}

// mainWithOptions is the main function after parsing the command line.
func mainWithOptions(ctx context.Context, flags *pflag.FlagSet, args []string,
	currentOptions *Options, stdout io.Writer, useColor bool) error {
	logger := logx.NewLogger(currentOptions.Verbose)
	log.Log = logger

	settings, err := loadSettings(flags, currentOptions)
	if err != nil {
		return err
	}

	var input string
	if len(args) > 0 {
		input = args[0]
	} else if input, err = promptURL(); err != nil {
		return errors.Wrap(err, "reading URL")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sess := engine.NewSession(*settings, logger)
	m, err := sess.Run(ctx, input)
	if m == nil {
		return errors.Wrap(err, "cannot run the probe")
	}

	opts := report.Options{Color: useColor, Threshold: settings.Threshold}
	if _, werr := report.Analyze(m.DNS, m.HTTP, opts).WriteTo(stdout); werr != nil {
		return errors.Wrap(werr, "writing report")
	}
	if err != nil {
		return errors.Wrap(err, "probe interrupted")
	}
	return nil
}

// loadSettings merges the defaults, the optional config file, and the
// command line flags that the user explicitly set, in this order.
func loadSettings(flags *pflag.FlagSet, currentOptions *Options) (*config.Settings, error) {
	settings := config.Default()
	if currentOptions.ConfigFile != "" {
		fromFile, err := config.ReadConfig(currentOptions.ConfigFile)
		if err != nil {
			return nil, err
		}
		settings = *fromFile
	}
	if flags.Changed("count") {
		settings.Count = currentOptions.Count
	}
	if flags.Changed("delay") {
		settings.Delay = currentOptions.Delay
	}
	if flags.Changed("resolver") {
		settings.Resolver = currentOptions.Resolver
	}
	if flags.Changed("skip-failed") {
		settings.SkipFailed = currentOptions.SkipFailed
	}
	if flags.Changed("threshold") {
		settings.Threshold = currentOptions.Threshold
	}
	if flags.Changed("timeout") {
		settings.Timeout = currentOptions.Timeout
	}
	if flags.Changed("user-agent") {
		settings.UserAgent = currentOptions.UserAgent
	}
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	return &settings, nil
}
