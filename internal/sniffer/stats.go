package sniffer

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/log"
	"firestige.xyz/sentinel/internal/metrics"
)

// Stats holds the counters of one capture session. Counters are atomic so
// they can be read while the session runs.
type Stats struct {
	Interface string
	StartTime time.Time

	FramesRead    int64
	FramesDecoded int64
	FramesSkipped int64
	ReadErrors    int64

	TCPRecords   int64
	UDPRecords   int64
	OtherRecords int64

	readCounter    prometheus.Counter
	skippedCounter prometheus.Counter
	errorCounter   prometheus.Counter
}

func newStats(iface string) *Stats {
	return &Stats{
		Interface:      iface,
		StartTime:      time.Now(),
		readCounter:    metrics.FramesReadTotal.WithLabelValues(iface),
		skippedCounter: metrics.FramesSkippedTotal.WithLabelValues(iface),
		errorCounter:   metrics.ReadErrorsTotal.WithLabelValues(iface),
	}
}

func (s *Stats) frameRead() {
	atomic.AddInt64(&s.FramesRead, 1)
	s.readCounter.Inc()
}

func (s *Stats) frameSkipped() {
	atomic.AddInt64(&s.FramesSkipped, 1)
	s.skippedCounter.Inc()
}

func (s *Stats) readError() {
	atomic.AddInt64(&s.ReadErrors, 1)
	s.errorCounter.Inc()
}

func (s *Stats) frameDecoded(p core.Protocol) {
	atomic.AddInt64(&s.FramesDecoded, 1)
	switch p {
	case core.ProtocolTCP:
		atomic.AddInt64(&s.TCPRecords, 1)
	case core.ProtocolUDP:
		atomic.AddInt64(&s.UDPRecords, 1)
	default:
		atomic.AddInt64(&s.OtherRecords, 1)
	}
	metrics.FramesDecodedTotal.WithLabelValues(s.Interface, string(p)).Inc()
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() Stats {
	return Stats{
		Interface:     s.Interface,
		StartTime:     s.StartTime,
		FramesRead:    atomic.LoadInt64(&s.FramesRead),
		FramesDecoded: atomic.LoadInt64(&s.FramesDecoded),
		FramesSkipped: atomic.LoadInt64(&s.FramesSkipped),
		ReadErrors:    atomic.LoadInt64(&s.ReadErrors),
		TCPRecords:    atomic.LoadInt64(&s.TCPRecords),
		UDPRecords:    atomic.LoadInt64(&s.UDPRecords),
		OtherRecords:  atomic.LoadInt64(&s.OtherRecords),
	}
}

// GetRuntime returns the time since the session started.
func (s *Stats) GetRuntime() time.Duration {
	return time.Since(s.StartTime)
}

// GetSkipRate returns the share of read frames the decoder discarded, in percent.
func (s *Stats) GetSkipRate() float64 {
	read := atomic.LoadInt64(&s.FramesRead)
	if read == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&s.FramesSkipped)) / float64(read) * 100
}

func (s *Stats) logSummary(logger log.Logger, err error) {
	snap := s.Snapshot()
	entry := logger.WithFields(map[string]interface{}{
		"interface":  snap.Interface,
		"runtime":    s.GetRuntime().Truncate(time.Millisecond),
		"read":       snap.FramesRead,
		"decoded":    snap.FramesDecoded,
		"skipped":    snap.FramesSkipped,
		"skip_rate":  s.GetSkipRate(),
		"read_error": snap.ReadErrors,
		"tcp":        snap.TCPRecords,
		"udp":        snap.UDPRecords,
		"other":      snap.OtherRecords,
	})
	if err != nil {
		entry.WithError(err).Warn("capture session failed")
		return
	}
	entry.Info("capture session finished")
}
