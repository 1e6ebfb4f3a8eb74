package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/sentinel/internal/config"
	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/log"
	"firestige.xyz/sentinel/internal/metrics"
	"firestige.xyz/sentinel/pkg/sentinel"
)

// captureParams is everything one capture run needs, after flags have
// been merged over the configuration.
type captureParams struct {
	count         int
	output        string
	metricsListen string
	capture       config.CaptureConfig
	metrics       config.MetricsConfig
}

func newCaptureCmd() *cobra.Command {
	var (
		count         int
		iface         string
		backend       string
		file          string
		timeout       time.Duration
		output        string
		metricsListen string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture and decode a fixed number of IPv4 frames",
		Long: `Open a capture channel and read frames until the requested number
of Ethernet/IPv4 frames have been decoded. Other frames are skipped.

Without --interface the first non-loopback interface with an address is
used; the OS up flag is ignored. Ctrl-C aborts with no output.

Examples:
  sentinel capture                         # 10 records from the auto-selected interface
  sentinel capture -n 100 -i eth0 -o json  # 100 records from eth0 as JSON
  sentinel capture -f trace.pcap -n 5      # replay a pcap file
  sentinel capture -t 30s --metrics-listen :9091`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}

			cfg := *globalCfg
			flags := cmd.Flags()
			if flags.Changed("interface") {
				cfg.Capture.Interface = iface
			}
			if flags.Changed("backend") {
				cfg.Capture.Backend = backend
			}
			if flags.Changed("file") {
				if b := strings.ToLower(backend); flags.Changed("backend") && b != config.BackendAuto && b != config.BackendFile {
					return fmt.Errorf("%w: --file cannot be combined with --backend %s", core.ErrConfigInvalid, backend)
				}
				cfg.Capture.FilePath = file
				cfg.Capture.Backend = config.BackendFile
			}
			if flags.Changed("timeout") {
				cfg.Capture.Timeout = timeout
			}
			if err := cfg.ValidateAndApplyDefaults(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCapture(ctx, cli, cmd.OutOrStdout(), captureParams{
				count:         count,
				output:        output,
				metricsListen: metricsListen,
				capture:       cfg.Capture,
				metrics:       cfg.Metrics,
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&count, "count", "n", 10, "number of decoded records to capture")
	flags.StringVarP(&iface, "interface", "i", "", "capture on this interface instead of auto-selecting")
	flags.StringVarP(&backend, "backend", "b", config.BackendAuto, "capture backend: auto|afpacket|pcap|file")
	flags.StringVarP(&file, "file", "f", "", "replay frames from a pcap file (implies --backend file)")
	flags.DurationVarP(&timeout, "timeout", "t", 0, "abort the capture after this long (0 = wait indefinitely)")
	flags.StringVarP(&output, "output", "o", formatText, "output format: table|json|yaml|text")
	flags.StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address during the capture")
	return cmd
}

func runCapture(ctx context.Context, client ClientInterface, w io.Writer, p captureParams) error {
	if p.capture.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.capture.Timeout)
		defer cancel()
	}

	listen := p.metricsListen
	if listen == "" && p.metrics.Enabled {
		listen = p.metrics.Listen
	}
	if listen != "" {
		srv := metrics.NewServer(listen, p.metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				log.GetLogger().WithError(err).Warn("failed to stop metrics server")
			}
		}()
	}

	records, err := client.Capture(ctx, p.count, captureOptions(p.capture)...)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	return writeRecords(w, p.output, records)
}

func captureOptions(c config.CaptureConfig) []sentinel.Option {
	opts := []sentinel.Option{
		sentinel.WithBackend(c.Backend),
		sentinel.WithSnapLen(c.SnapLen),
		sentinel.WithPollTimeout(c.PollTimeout),
		sentinel.WithReadRetry(c.ReadRetry.MaxConsecutive, c.ReadRetry.Backoff),
		sentinel.WithLogger(log.GetLogger()),
	}
	if c.Interface != "" {
		opts = append(opts, sentinel.WithInterface(c.Interface))
	}
	if c.Backend == config.BackendFile {
		opts = append(opts, sentinel.WithFile(c.FilePath))
	}
	return opts
}
