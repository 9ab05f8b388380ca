package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/okian/elocompare/internal/adapters/chart"
	"github.com/okian/elocompare/internal/config"
	"github.com/okian/elocompare/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger on stderr, and on logFile too
// when it is set. The returned closer releases the file.
func SetupLogging(logFile, format string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}

	if err := logger.Init(logger.WithWriter(w), logger.WithFormat(format)); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// NewCommand returns the render command. Upstream endpoints and chart size
// come from the usual configuration; the flags name the comparison.
func NewCommand(ctx context.Context) *cobra.Command {
	var (
		cfg     Config
		format  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an Elo history comparison to an image file",
		Example: `  render --primary 12 --out ana.png
  render --primary 12 --secondary 40 --out ana-vs-bea.svg --format svg`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := chart.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg.Format = f

			appCfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			closer, err := SetupLogging(cfg.LogFile, appCfg.LogFormat, cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()
			if !cfg.Verbose {
				if err := logger.SetLevelString(appCfg.LogLevel); err != nil {
					_ = logger.SetLevelString("info")
				}
			}

			runCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			stats, err := Run(runCtx, appCfg, &cfg, cmd.ErrOrStderr())
			if stats != nil {
				displayFinalStats(runCtx, stats)
			}
			return err
		},
	}

	bindFlags(cmd.Flags(), &cfg, &format, &timeout)
	_ = cmd.MarkFlagRequired("primary")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func bindFlags(fs *pflag.FlagSet, cfg *Config, format *string, timeout *time.Duration) {
	fs.StringVar(&cfg.Primary, "primary", "", "entity id for the first slot")
	fs.StringVar(&cfg.Secondary, "secondary", "", "entity id for the second slot")
	fs.StringVarP(&cfg.Out, "out", "o", "", "output image file")
	fs.StringVar(format, "format", string(chart.FormatPNG), "image format: png or svg")
	fs.StringVar(&cfg.LogFile, "log", "", "also write logs to this file")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")
	fs.DurationVar(timeout, "timeout", 0, "overall deadline; 0 relies on the HTTP timeout alone")
}
