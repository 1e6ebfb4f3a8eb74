// Package sentinel lists network interfaces and captures decoded IPv4
// frame records from one of them.
//
//	ifaces, err := sentinel.ListInterfaces(ctx)
//	records, err := sentinel.Capture(ctx, 10)
//
// Capturing from a live interface needs raw-socket privileges
// (root or CAP_NET_RAW on Linux, Npcap on Windows).
package sentinel

import (
	"context"
	"time"

	"firestige.xyz/sentinel/internal/config"
	"firestige.xyz/sentinel/internal/log"
	"firestige.xyz/sentinel/internal/netif"
	"firestige.xyz/sentinel/internal/sniffer"
)

const (
	defaultSnapLen      = 65535
	defaultPollTimeout  = 100 * time.Millisecond
	defaultRetryBackoff = 5 * time.Millisecond
)

// Option customizes a Capture call.
type Option func(*sniffer.Options)

// WithBackend selects the capture backend: "auto", "afpacket", "pcap" or "file".
func WithBackend(backend string) Option {
	return func(o *sniffer.Options) { o.Backend = backend }
}

// WithInterface captures on the named interface instead of picking one.
func WithInterface(name string) Option {
	return func(o *sniffer.Options) { o.Interface = name }
}

// WithFile replays frames from a pcap file instead of a live interface.
func WithFile(path string) Option {
	return func(o *sniffer.Options) {
		o.Backend = config.BackendFile
		o.FilePath = path
	}
}

// WithSnapLen sets how many bytes of each frame are captured.
func WithSnapLen(n int) Option {
	return func(o *sniffer.Options) { o.SnapLen = n }
}

// WithPollTimeout bounds one blocking read, and with it how quickly a
// cancelled context is noticed.
func WithPollTimeout(d time.Duration) Option {
	return func(o *sniffer.Options) { o.PollTimeout = d }
}

// WithReadRetry caps consecutive read failures (0 = unlimited)
// and sets the pause between them.
func WithReadRetry(maxConsecutive int, backoff time.Duration) Option {
	return func(o *sniffer.Options) {
		o.ReadRetry = sniffer.RetryPolicy{MaxConsecutive: maxConsecutive, Backoff: backoff}
	}
}

// WithLogger routes session logs to l instead of the process logger.
func WithLogger(l log.Logger) Option {
	return func(o *sniffer.Options) { o.Logger = l }
}

// ListInterfaces returns every interface the OS reports, in OS order.
func ListInterfaces(ctx context.Context) ([]Interface, error) {
	return netif.List(ctx)
}

// SelectInterface returns the interface Capture would pick on its own
// from ifaces.
func SelectInterface(ifaces []Interface) (Interface, error) {
	return netif.Select(ifaces)
}

// Capture reads from the network until count frames decode as IPv4 and
// returns their records in arrival order. It blocks until then unless ctx
// is cancelled. Any failure returns no records.
func Capture(ctx context.Context, count int, opts ...Option) ([]Record, error) {
	return sniffer.New(buildOptions(opts...)).Capture(ctx, count)
}

func buildOptions(opts ...Option) sniffer.Options {
	o := sniffer.Options{
		Backend:     config.BackendAuto,
		SnapLen:     defaultSnapLen,
		PollTimeout: defaultPollTimeout,
		ReadRetry:   sniffer.RetryPolicy{Backoff: defaultRetryBackoff},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
