// Package sniffer runs bounded capture sessions: pick an interface, open a
// channel on it, and read until enough frames decode.
package sniffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"firestige.xyz/sentinel/internal/capture"
	"firestige.xyz/sentinel/internal/config"
	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/decoder"
	"firestige.xyz/sentinel/internal/log"
	"firestige.xyz/sentinel/internal/metrics"
	"firestige.xyz/sentinel/internal/netif"
)

// RetryPolicy bounds retries of failed reads.
type RetryPolicy struct {
	MaxConsecutive int           // 0 = unlimited
	Backoff        time.Duration // pause between consecutive failures
}

// Options configures a Sniffer.
type Options struct {
	Backend     string // auto | afpacket | pcap | file
	Interface   string // empty = automatic selection
	FilePath    string // pcap file for the file backend
	SnapLen     int
	PollTimeout time.Duration
	ReadRetry   RetryPolicy
	Logger      log.Logger
}

// OptionsFromConfig maps the capture section of the configuration.
func OptionsFromConfig(cfg config.CaptureConfig) Options {
	return Options{
		Backend:     cfg.Backend,
		Interface:   cfg.Interface,
		FilePath:    cfg.FilePath,
		SnapLen:     cfg.SnapLen,
		PollTimeout: cfg.PollTimeout,
		ReadRetry: RetryPolicy{
			MaxConsecutive: cfg.ReadRetry.MaxConsecutive,
			Backoff:        cfg.ReadRetry.Backoff,
		},
	}
}

type (
	listFunc func(ctx context.Context) ([]core.InterfaceInfo, error)
	openFunc func(iface core.InterfaceInfo, opts capture.Options) (capture.Channel, error)
)

// Sniffer captures decoded records. Sessions run one at a time per
// Sniffer; each builds its own channel and decoder.
type Sniffer struct {
	opts   Options
	logger log.Logger

	list listFunc
	open openFunc

	stats atomic.Pointer[Stats]
}

// New creates a Sniffer.
func New(opts Options) *Sniffer {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Sniffer{
		opts:   opts,
		logger: logger,
		list:   netif.List,
		open:   capture.Open,
	}
}

// Stats returns the counters of the current or most recent session, or
// nil before the first session opened a channel.
func (s *Sniffer) Stats() *Stats {
	return s.stats.Load()
}

// Capture reads frames until exactly count of them decode, and returns
// those records in arrival order. Any failure returns no records.
//
// A count of zero returns immediately without touching the network.
// Cancelling ctx ends the session with core.ErrCaptureAborted; the poll
// timeout bounds how long that takes to be noticed.
func (s *Sniffer) Capture(ctx context.Context, count int) ([]core.Record, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidCount, count)
	}
	if count == 0 {
		return []core.Record{}, nil
	}

	records, err := s.capture(ctx, count)
	metrics.SessionsTotal.WithLabelValues(sessionResult(err)).Inc()
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Sniffer) capture(ctx context.Context, count int) ([]core.Record, error) {
	target, err := s.resolveTarget(ctx)
	if err != nil {
		return nil, err
	}

	ch, err := s.open(target, capture.Options{
		Backend:     s.opts.Backend,
		SnapLen:     s.opts.SnapLen,
		PollTimeout: s.opts.PollTimeout,
		FilePath:    s.opts.FilePath,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ch.Close(); cerr != nil {
			s.logger.WithError(cerr).Warn("failed to close capture channel")
		}
	}()

	stats := newStats(ch.Interface())
	s.stats.Store(stats)

	s.logger.WithFields(map[string]interface{}{
		"interface": ch.Interface(),
		"count":     count,
	}).Info("capture session started")

	records, err := s.readLoop(ctx, ch, count, stats)
	stats.logSummary(s.logger, err)
	return records, err
}

// resolveTarget enumerates interfaces and picks one, by name when the
// operator gave one. The file backend has no live interface.
func (s *Sniffer) resolveTarget(ctx context.Context) (core.InterfaceInfo, error) {
	if s.opts.Backend == config.BackendFile {
		return core.InterfaceInfo{Name: s.opts.FilePath}, nil
	}

	ifaces, err := s.list(ctx)
	if err != nil {
		return core.InterfaceInfo{}, err
	}

	var target core.InterfaceInfo
	if s.opts.Interface != "" {
		target, err = netif.SelectByName(ifaces, s.opts.Interface)
	} else {
		target, err = netif.Select(ifaces)
	}
	if err != nil {
		return core.InterfaceInfo{}, err
	}

	s.logger.WithFields(map[string]interface{}{
		"interface": target.Name,
		"addrs":     target.Addrs,
		"up":        target.Up,
	}).Debug("interface selected")
	return target, nil
}

func (s *Sniffer) readLoop(ctx context.Context, ch capture.Channel, count int, stats *Stats) ([]core.Record, error) {
	dec := decoder.New()
	records := make([]core.Record, 0, count)
	failures := 0

	for len(records) < count {
		if err := ctx.Err(); err != nil {
			return nil, aborted(err)
		}

		frame, ci, err := ch.ReadFrame()
		if err != nil {
			if capture.IsTimeout(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %s ended after %d of %d records",
					core.ErrSourceExhausted, ch.Interface(), len(records), count)
			}

			// Every other read error is retried; only the cap ends the session.
			stats.readError()
			failures++
			if limit := s.opts.ReadRetry.MaxConsecutive; limit > 0 && failures > limit {
				return nil, fmt.Errorf("%w: %d consecutive failures on %s: %w",
					core.ErrReadRetriesExhausted, failures, ch.Interface(), err)
			}
			if capture.IsTransient(err) {
				if s.logger.IsDebugEnabled() {
					s.logger.WithError(err).WithField("consecutive", failures).Debug("transient read error, retrying")
				}
			} else if failures == 1 {
				s.logger.WithError(err).WithField("interface", ch.Interface()).Warn("unexpected read error, retrying")
			}
			if err := sleepCtx(ctx, s.opts.ReadRetry.Backoff); err != nil {
				return nil, aborted(err)
			}
			continue
		}
		failures = 0
		stats.frameRead()

		// frame may alias the ring buffer; Decode copies out what it keeps.
		rec, ok := dec.DecodeWithInfo(frame, ci)
		if !ok {
			stats.frameSkipped()
			continue
		}
		stats.frameDecoded(rec.Protocol)
		records = append(records, rec)
	}

	return records, nil
}

func aborted(cause error) error {
	return fmt.Errorf("%w: %w", core.ErrCaptureAborted, cause)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func sessionResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, core.ErrCaptureAborted):
		return metrics.ResultAborted
	default:
		return metrics.ResultError
	}
}
